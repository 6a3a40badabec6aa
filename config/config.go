package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the service configuration
type Config struct {
	Server     ServerConfig
	Hub        HubConfig
	Content    ContentConfig
	Upstream   UpstreamConfig
	ServiceBus ServiceBusConfig
	NewRelic   NewRelicConfig
}

// ServerConfig holds the HTTP server configuration
type ServerConfig struct {
	Port int
	Mode string // debug, release, test
}

// HubConfig holds the event history and live session tuning knobs
type HubConfig struct {
	HistoryHigh   int
	HistoryLow    int
	SessionBuffer int
}

// ContentConfig holds the captured media storage configuration
type ContentConfig struct {
	ImagesDir string
}

// UpstreamConfig holds the agent-command channel configuration. An empty
// URL (and no Service Bus connection string) means commands are logged
// and dropped.
type UpstreamConfig struct {
	URL            string
	TimeoutSeconds int
}

// ServiceBusConfig holds the Azure Service Bus configuration
type ServiceBusConfig struct {
	ConnectionString string
	QueueName        string
}

// NewRelicConfig holds the New Relic configuration
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// InitConfig initializes the configuration using Viper
func InitConfig(cfgFile string) error {
	// Set defaults for configuration
	setDefaults()

	// Use config file from the flag if provided
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in common directories with name "config"
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/relay-hub")
		viper.SetConfigName("config")
	}

	// Set environment variable prefix for config overrides
	viper.SetEnvPrefix("RELAY")

	// Enable automatic environment variable binding
	// For example, RELAY_SERVER_PORT will override server.port
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, using defaults and environment variables
			fmt.Println("No config file found, using defaults and environment variables")
		} else {
			// Config file was found but another error occurred
			return fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}

	return nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 9191)
	viper.SetDefault("server.mode", "debug")

	// History and live session defaults
	viper.SetDefault("hub.historyhigh", 1000)
	viper.SetDefault("hub.historylow", 500)
	viper.SetDefault("hub.sessionbuffer", 32)

	// Content storage defaults
	viper.SetDefault("content.imagesdir", "web_images")

	// Upstream defaults - no URL by default, commands are logged and dropped
	viper.SetDefault("upstream.url", "")
	viper.SetDefault("upstream.timeoutseconds", 5)

	// Service Bus defaults - no default connection string for security
	viper.SetDefault("servicebus.queuename", "agent-commands")

	// New Relic defaults
	viper.SetDefault("newrelic.appname", "Relay Hub Local")
	viper.SetDefault("newrelic.enabled", false)
}

// Load loads the configuration
func Load() (*Config, error) {
	serverConfig := ServerConfig{
		Port: viper.GetInt("server.port"),
		Mode: viper.GetString("server.mode"),
	}

	hubConfig := HubConfig{
		HistoryHigh:   viper.GetInt("hub.historyhigh"),
		HistoryLow:    viper.GetInt("hub.historylow"),
		SessionBuffer: viper.GetInt("hub.sessionbuffer"),
	}

	contentConfig := ContentConfig{
		ImagesDir: viper.GetString("content.imagesdir"),
	}

	upstreamConfig := UpstreamConfig{
		URL:            viper.GetString("upstream.url"),
		TimeoutSeconds: viper.GetInt("upstream.timeoutseconds"),
	}

	serviceBusConfig := ServiceBusConfig{
		ConnectionString: viper.GetString("servicebus.connectionstring"),
		QueueName:        viper.GetString("servicebus.queuename"),
	}

	newRelicConfig := NewRelicConfig{
		AppName:    viper.GetString("newrelic.appname"),
		LicenseKey: viper.GetString("newrelic.licensekey"),
		Enabled:    viper.GetBool("newrelic.enabled"),
	}

	return &Config{
		Server:     serverConfig,
		Hub:        hubConfig,
		Content:    contentConfig,
		Upstream:   upstreamConfig,
		ServiceBus: serviceBusConfig,
		NewRelic:   newRelicConfig,
	}, nil
}

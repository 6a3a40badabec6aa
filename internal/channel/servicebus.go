package channel

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
)

// serviceBusSink forwards commands through an Azure Service Bus queue,
// sessioned by device id so per-device ordering survives the broker.
type serviceBusSink struct {
	client *azservicebus.Client
	sender *azservicebus.Sender
}

// NewServiceBusSink creates a Sink backed by an Azure Service Bus queue.
func NewServiceBusSink(connectionString, queueName string) (Sink, error) {
	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus client: %w", err)
	}

	sender, err := client.NewSender(queueName, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Service Bus sender: %w", err)
	}

	return &serviceBusSink{
		client: client,
		sender: sender,
	}, nil
}

func (s *serviceBusSink) Send(ctx context.Context, deviceID, command string) error {
	sessionID := deviceID
	msg := &azservicebus.Message{
		Body: []byte(command),
		ApplicationProperties: map[string]interface{}{
			"device_id": deviceID,
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
		SessionID: &sessionID,
	}
	return s.sender.SendMessage(ctx, msg, nil)
}

func (s *serviceBusSink) Close() error {
	if s.sender != nil {
		if err := s.sender.Close(context.Background()); err != nil {
			return err
		}
	}
	if s.client != nil {
		return s.client.Close(context.Background())
	}
	return nil
}

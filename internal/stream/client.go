package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/JPM1118/reel/internal/config"
)

// ClientID returns a fresh broker client id.
func ClientID() string {
	return "reel-" + uuid.NewString()
}

// ClientOptions builds paho options for cfg.
func ClientOptions(cfg config.StreamConfig, log *slog.Logger) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(ClientID()).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetConnectTimeout(10 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("connected to broker", "broker", cfg.Broker)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("broker connection lost", "broker", cfg.Broker, "error", err)
		})
}

// Connect dials the broker and waits for the connection or ctx.
func Connect(ctx context.Context, cfg config.StreamConfig, log *slog.Logger) (mqtt.Client, error) {
	client := mqtt.NewClient(ClientOptions(cfg, log))
	token := client.Connect()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}
	return client, nil
}

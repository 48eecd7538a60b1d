package mqtt

import (
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Config holds broker connection settings.
type Config struct {
	Broker               string
	ClientID             string
	User                 string
	Pass                 string
	MaxReconnectInterval time.Duration
}

// NewClientOptions builds paho options that reconnect automatically and
// report channel state through onStatus. onConnect runs after every
// (re)connect so the subscription can be restored.
func NewClientOptions(cfg Config, stats *Stats, onStatus func(bool), onConnect func(mqtt.Client)) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetOrderMatters(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(time.Second)
	if cfg.MaxReconnectInterval > 0 {
		opts.SetMaxReconnectInterval(cfg.MaxReconnectInterval)
	}
	if cfg.User != "" {
		opts.SetUsername(cfg.User).SetPassword(cfg.Pass)
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		onStatus(true)
		if onConnect != nil {
			onConnect(c)
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, _ error) {
		onStatus(false)
	})
	opts.SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
		stats.reconnects.Add(1)
	})
	return opts
}

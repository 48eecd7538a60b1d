package main

import (
	"fmt"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"dgu-live/internal/config"
	"dgu-live/internal/logger"
	"dgu-live/internal/mqtt"
	"dgu-live/internal/store"
	"dgu-live/internal/transport"
)

// source is the single push channel feeding the session store.
type source interface {
	Frames() uint64
	Discarded() uint64
	Reconnects() uint64
	Close()
}

func startSource(cfg *config.Config, st *store.Store, sessionID string) (source, error) {
	switch cfg.Source {
	case config.SourceWebsocket:
		l := logger.WithSession(logger.WithComponent("transport"), sessionID)
		return transport.Open(transport.Config{
			URL:              cfg.WS.URL,
			Token:            cfg.WS.Token,
			Subscribe:        cfg.WS.Subscribe,
			BackoffFloor:     cfg.WS.BackoffFloor,
			BackoffCeiling:   cfg.WS.BackoffCeiling,
			HandshakeTimeout: cfg.WS.HandshakeTimeout,
			Logger:           &l,
		}, st.Apply, st.SetConnected), nil
	case config.SourceMQTT:
		return startMQTT(cfg.MQTT, st, sessionID), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Source)
}

type mqttSource struct {
	*mqtt.Stats
	client pahomqtt.Client
	st     *store.Store
}

func (m *mqttSource) Close() {
	m.client.Disconnect(250)
	m.st.SetConnected(false)
}

func startMQTT(cfg config.MQTTConfig, st *store.Store, sessionID string) *mqttSource {
	l := logger.WithSession(logger.WithComponent("mqtt"), sessionID)
	stats := &mqtt.Stats{}

	opts := mqtt.NewClientOptions(mqtt.Config{
		Broker:               cfg.Broker,
		ClientID:             cfg.ClientID + "-" + sessionID[:8],
		User:                 cfg.User,
		Pass:                 cfg.Pass,
		MaxReconnectInterval: cfg.MaxReconnectInterval,
	}, stats, st.SetConnected, func(c pahomqtt.Client) {
		if err := mqtt.Subscribe(c, cfg.TopicPrefix, l, stats, st.Apply); err != nil {
			l.Error().Err(err).Msg("mqtt subscribe")
		}
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	go func() {
		// with connect-retry the token completes on first success or Disconnect
		token.Wait()
		if err := token.Error(); err != nil {
			l.Warn().Err(err).Msg("mqtt connect")
		}
	}()
	return &mqttSource{Stats: stats, client: client, st: st}
}

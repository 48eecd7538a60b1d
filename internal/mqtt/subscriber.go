package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"dgu-live/internal/model"
)

const (
	DefaultTopicPrefix = "cg/v1/decoded/SN"
	QoS                = 0
)

// Topic returns the subscription filter <prefix>/<router_sn>/<equip_type>/<panel>.
func Topic(prefix string) string {
	return strings.TrimSuffix(prefix, "/") + "/+/+/+"
}

// TopicToKey extracts the equipment key from "<prefix>/<router_sn>/<equip_type>/<panel>".
func TopicToKey(prefix, topic string) (model.Key, bool) {
	rest, ok := strings.CutPrefix(topic, strings.TrimSuffix(prefix, "/")+"/")
	if !ok {
		return model.Key{}, false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" {
		return model.Key{}, false
	}
	return model.NewKey(parts[0], parts[1], parts[2]), true
}

type payload struct {
	RouterSN  string          `json:"router_sn"`
	BserverID json.RawMessage `json:"bserver_id"`
	Timestamp string          `json:"timestamp"`
	Registers []model.Reading `json:"registers"`
}

// Decode turns one decoded-telemetry message into a Telemetry event. The
// router serial in the payload wins over the topic; the panel comes from
// bserver_id when present.
func Decode(prefix, topic string, data []byte) (*model.Telemetry, error) {
	key, ok := TopicToKey(prefix, topic)
	if !ok {
		return nil, fmt.Errorf("%w: topic %q", model.ErrMalformedFrame, topic)
	}
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedFrame, err)
	}
	if p.RouterSN == "" {
		return nil, model.ErrMissingSite
	}

	panel := "0"
	if id := strings.TrimSpace(string(p.BserverID)); id != "" && id != "null" {
		n, err := strconv.Atoi(strings.Trim(id, `"`))
		if err != nil {
			return nil, fmt.Errorf("%w: bserver_id %s", model.ErrMalformedFrame, id)
		}
		panel = strconv.Itoa(n)
	}

	ev := &model.Telemetry{
		Key:      model.NewKey(p.RouterSN, key.EquipType, panel),
		Readings: p.Registers,
	}
	if t, ok := model.ParseTimestamp(p.Timestamp); ok {
		ev.Timestamp = t
	}
	return ev, nil
}

// Stats counts messages for diagnostics. The zero value is ready to use.
type Stats struct {
	frames     atomic.Uint64
	discarded  atomic.Uint64
	reconnects atomic.Uint64
}

func (s *Stats) Frames() uint64     { return s.frames.Load() }
func (s *Stats) Discarded() uint64  { return s.discarded.Load() }
func (s *Stats) Reconnects() uint64 { return s.reconnects.Load() }

// Subscribe subscribes to the decoded telemetry tree under prefix and calls
// onMessage for each valid message. Invalid messages are logged at debug
// level, counted in stats and dropped.
func Subscribe(client mqtt.Client, prefix string, logger zerolog.Logger, stats *Stats, onMessage func(model.Event)) error {
	topic := Topic(prefix)
	token := client.Subscribe(topic, QoS, func(c mqtt.Client, msg mqtt.Message) {
		stats.frames.Add(1)
		ev, err := Decode(prefix, msg.Topic(), msg.Payload())
		if err != nil {
			stats.discarded.Add(1)
			logger.Debug().Err(err).Str("topic", msg.Topic()).Msg("dropping mqtt message")
			return
		}
		onMessage(ev)
	})
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	logger.Info().Str("topic", topic).Int("qos", QoS).Msg("mqtt subscribed")
	return nil
}

package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Frame discriminants.
const (
	TypeSnapshot     = "snapshot"
	TypeTelemetry    = "telemetry"
	TypeStatusChange = "status_change"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown frame type")
	ErrMissingSite    = errors.New("frame has no router_sn")
	ErrMissingStatus  = errors.New("status_change has no status")
)

type frame struct {
	Type      string            `json:"type"`
	Items     []json.RawMessage `json:"items"`
	RouterSN  string            `json:"router_sn"`
	EquipType string            `json:"equip_type"`
	PanelID   json.RawMessage   `json:"panel_id"`
	Timestamp json.RawMessage   `json:"timestamp"`
	Registers []Reading         `json:"registers"`
	Status    string            `json:"status"`
}

// DecodeFrame parses one JSON text frame. Items of a snapshot that fail to
// decode are skipped and counted in Snapshot.Dropped; the rest keep their order.
func DecodeFrame(data []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if f.Type != TypeSnapshot {
		return decodeSingle(&f)
	}

	snap := &Snapshot{Items: make([]Event, 0, len(f.Items))}
	for _, raw := range f.Items {
		var item frame
		if err := json.Unmarshal(raw, &item); err != nil {
			snap.Dropped++
			continue
		}
		ev, err := decodeSingle(&item)
		if err != nil {
			snap.Dropped++
			continue
		}
		snap.Items = append(snap.Items, ev)
	}
	return snap, nil
}

func decodeSingle(f *frame) (Event, error) {
	switch f.Type {
	case TypeTelemetry, TypeStatusChange:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
	if f.RouterSN == "" {
		return nil, ErrMissingSite
	}
	panel, err := rawIdentifier(f.PanelID)
	if err != nil {
		return nil, fmt.Errorf("%w: panel_id: %v", ErrMalformedFrame, err)
	}
	key := NewKey(f.RouterSN, f.EquipType, panel)

	if f.Type == TypeStatusChange {
		if f.Status == "" {
			return nil, ErrMissingStatus
		}
		return &StatusChange{Key: key, Status: ConnStatus(f.Status)}, nil
	}

	tm := &Telemetry{Key: key, Readings: f.Registers}
	if ts, err := rawIdentifier(f.Timestamp); err == nil {
		// unparseable timestamps are treated as absent
		if t, ok := ParseTimestamp(ts); ok {
			tm.Timestamp = t
		}
	}
	return tm, nil
}

// rawIdentifier renders a JSON string or number as text. null and absent give "".
func rawIdentifier(raw json.RawMessage) (string, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return "", nil
	}
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(raw, &out); err != nil {
			return "", err
		}
		return out, nil
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return "", fmt.Errorf("not a string or number: %s", s)
	}
	return s, nil
}

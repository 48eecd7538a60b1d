package model

import (
	"strconv"
	"time"
)

// Baseline is one equipment row from the pull-based snapshot API.
type Baseline struct {
	RouterSN         string     `json:"router_sn"`
	EquipType        string     `json:"equip_type"`
	PanelID          int        `json:"panel_id"`
	Name             *string    `json:"name"`
	FirstSeenAt      *time.Time `json:"first_seen_at"`
	LastSeenAt       *time.Time `json:"last_seen_at"`
	InstalledPowerKW *float64   `json:"installed_power_kw"`
	CurrentLoadKW    *float64   `json:"current_load_kw"`
	EngineHours      *float64   `json:"engine_hours"`
	OilTempC         *float64   `json:"oil_temp_c"`
	OilPressureKPa   *float64   `json:"oil_pressure_kpa"`
	EngineState      string     `json:"engine_state"`
	ConnectionStatus ConnStatus `json:"connection_status"`
	LastUpdate       *time.Time `json:"last_update"`
}

// Key returns the live-state key of the row.
func (b Baseline) Key() Key {
	return NewKey(b.RouterSN, b.EquipType, strconv.Itoa(b.PanelID))
}

package view

import (
	"context"
	"strconv"
	"time"

	"dgu-live/internal/model"
)

// Registers names the key register addresses shown on a generator card.
type Registers struct {
	InstalledPower uint32 `yaml:"installed_power"`
	CurrentLoad    uint32 `yaml:"current_load"`
	EngineHours    uint32 `yaml:"engine_hours"`
	OilTemp        uint32 `yaml:"oil_temp"`
	OilPressure    uint32 `yaml:"oil_pressure"`
	EngineState    uint32 `yaml:"engine_state"`
}

// DefaultRegisters returns the addresses used by PCC controllers.
func DefaultRegisters() Registers {
	return Registers{
		InstalledPower: 43019,
		CurrentLoad:    40034,
		EngineHours:    40070,
		OilTemp:        40063,
		OilPressure:    40062,
		EngineState:    46109,
	}
}

// Live is what the store knows about one equipment instance.
type Live struct {
	Registers  *model.RegisterMap
	Status     model.ConnStatus
	LastUpdate time.Time
}

// Card is the merged view of one generator.
type Card struct {
	Key              model.Key
	Name             string
	Fresh            bool
	LastUpdate       time.Time
	Status           string
	InstalledPowerKW *float64
	CurrentLoadKW    *float64
	EngineHours      *float64
	OilTempC         *float64
	OilPressureKPa   *float64
}

// BuildCard merges a baseline row with live state at time now.
func BuildCard(b model.Baseline, live Live, now time.Time, regs Registers, staleAfter time.Duration) Card {
	return buildCard(b.Key(), displayName(b), b, live, now, regs, staleAfter)
}

func buildCard(k model.Key, name string, b model.Baseline, live Live, now time.Time, regs Registers, staleAfter time.Duration) Card {
	c := Card{
		Key:        k,
		Name:       name,
		Fresh:      Fresh(live.LastUpdate, now, staleAfter),
		LastUpdate: live.LastUpdate,
	}

	engine := b.EngineState
	if v, ok := live.Registers.Get(regs.EngineState); ok && !Unavailable(v) && v.Text != "" {
		engine = EngineState(v.Text)
	}
	c.Status = DisplayStatus(ConnectionStatus(live.Status, b.ConnectionStatus), engine)

	c.InstalledPowerKW = EffectiveValue(live.Registers, regs.InstalledPower, b.InstalledPowerKW)
	c.CurrentLoadKW = EffectiveValue(live.Registers, regs.CurrentLoad, b.CurrentLoadKW)
	c.OilPressureKPa = EffectiveValue(live.Registers, regs.OilPressure, b.OilPressureKPa)

	c.EngineHours = b.EngineHours
	if secs := LiveValue(live.Registers, regs.EngineHours); secs != nil {
		h := SecondsToHours(*secs)
		c.EngineHours = &h
	}

	c.OilTempC = b.OilTempC
	if raw := LiveValue(live.Registers, regs.OilTemp); raw != nil {
		reg, _ := live.Registers.Get(regs.OilTemp)
		t := NormalizeTemperature(*raw, reg.Unit)
		c.OilTempC = &t
	}
	return c
}

func displayName(b model.Baseline) string {
	if b.Name != nil && *b.Name != "" {
		return *b.Name
	}
	equip := b.EquipType
	if equip == "" {
		equip = model.DefaultEquipType
	}
	return equip + " #" + strconv.Itoa(b.PanelID)
}

// keyName names equipment that has live state but no baseline row.
func keyName(k model.Key) string {
	return k.EquipType + " #" + k.Panel
}

// Refresh calls fn with the current time immediately and then every interval
// until ctx is done. It exists to age relative times and freshness flags.
func Refresh(ctx context.Context, every time.Duration, fn func(now time.Time)) error {
	fn(time.Now())

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			fn(now)
		}
	}
}

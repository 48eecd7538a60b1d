package view

import (
	"strings"

	"dgu-live/internal/model"
)

// Raw device codes meaning "no reading available".
const (
	SentinelUint16 = 65535
	SentinelInt16  = 32767
)

// Unavailable reports whether v carries a sentinel raw value or an "NA" reason.
func Unavailable(v model.RegisterValue) bool {
	if v.Raw != nil && (*v.Raw == SentinelUint16 || *v.Raw == SentinelInt16) {
		return true
	}
	return strings.Contains(strings.ToUpper(v.Reason), "NA")
}

// LiveValue returns the converted value of addr, or nil when absent or unavailable.
func LiveValue(regs *model.RegisterMap, addr uint32) *float64 {
	v, ok := regs.Get(addr)
	if !ok || Unavailable(v) {
		return nil
	}
	return v.Value
}

// EffectiveValue prefers the live value of addr and falls back to baseline.
func EffectiveValue(regs *model.RegisterMap, addr uint32, baseline *float64) *float64 {
	if v := LiveValue(regs, addr); v != nil {
		return v
	}
	return baseline
}

// Reason returns the unavailability reason recorded for addr, if any.
func Reason(regs *model.RegisterMap, addr uint32) string {
	v, _ := regs.Get(addr)
	return v.Reason
}

package model

import "strings"

// DefaultEquipType is assumed when an event omits equip_type.
const DefaultEquipType = "pcc"

// Key identifies one equipment instance: site (router serial) x equipment type x panel.
// It is comparable and used directly as a map key.
type Key struct {
	Site      string
	EquipType string
	Panel     string
}

// NewKey normalises empty parts to their defaults.
func NewKey(site, equipType, panel string) Key {
	if equipType == "" {
		equipType = DefaultEquipType
	}
	if panel == "" {
		panel = "0"
	}
	return Key{Site: site, EquipType: equipType, Panel: panel}
}

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// String renders the key as "site:type:panel". Separators inside a part are
// escaped so distinct keys never render the same.
func (k Key) String() string {
	return keyEscaper.Replace(k.Site) + ":" +
		keyEscaper.Replace(k.EquipType) + ":" +
		keyEscaper.Replace(k.Panel)
}

package components

import (
	"github.com/zeusync/gameplay/internal/core/stats"
)

// Stat tags read by the stock components. Definitions files refer to them by
// number or by name.
const (
	TagHealth stats.Tag = iota + 1
	TagSpeed
	TagReload
	TagArmor
)

var TagNames = map[string]stats.Tag{
	"health": TagHealth,
	"speed":  TagSpeed,
	"reload": TagReload,
	"armor":  TagArmor,
}

package session

import "github.com/ecocharge/console/internal/api"

// ModeKind identifies a charging mode.
type ModeKind int

const (
	// ModeImmediate charges at the fastest speed at market price.
	ModeImmediate ModeKind = iota
	// ModeOptimized optimizes cost by preferring renewable energy.
	ModeOptimized
	// ModeBounded charges up to an operator-chosen energy limit.
	ModeBounded
)

// Bounds for the ModeBounded energy limit in kWh.
const (
	MinLimitKWh     = 10
	MaxLimitKWh     = 100
	DefaultLimitKWh = 50
)

// String returns the operator-facing label for the mode.
func (k ModeKind) String() string {
	switch k {
	case ModeImmediate:
		return "CHARGE NOW"
	case ModeOptimized:
		return "FULL CHARGE"
	case ModeBounded:
		return "CUSTOM"
	default:
		return "UNKNOWN"
	}
}

// WireTag returns the mode tag sent to the charging service.
func (k ModeKind) WireTag() string {
	switch k {
	case ModeOptimized:
		return api.ModeFullCharge
	case ModeBounded:
		return api.ModeCustom
	default:
		return api.ModeChargeNow
	}
}

// ModeSelection is the tagged charging-mode choice. Exactly one mode is
// active at a time; the energy limit exists only while ModeBounded is active.
type ModeSelection struct {
	kind     ModeKind
	limitKWh int
}

// NewModeSelection returns a selection with ModeImmediate active.
func NewModeSelection() ModeSelection {
	return ModeSelection{kind: ModeImmediate}
}

// Kind returns the active mode.
func (s ModeSelection) Kind() ModeKind {
	return s.kind
}

// Choose activates a mode. Switching away from ModeBounded discards its
// limit; switching to ModeBounded starts from the default limit, not from
// any previously discarded value.
func (s *ModeSelection) Choose(kind ModeKind) {
	if kind == s.kind {
		return
	}
	s.kind = kind
	if kind == ModeBounded {
		s.limitKWh = DefaultLimitKWh
	} else {
		s.limitKWh = 0
	}
}

// SetLimit sets the bounded-mode energy limit, clamped to
// [MinLimitKWh, MaxLimitKWh]. Ignored unless ModeBounded is active.
func (s *ModeSelection) SetLimit(kwh int) {
	if s.kind != ModeBounded {
		return
	}
	if kwh < MinLimitKWh {
		kwh = MinLimitKWh
	}
	if kwh > MaxLimitKWh {
		kwh = MaxLimitKWh
	}
	s.limitKWh = kwh
}

// Limit returns the energy limit and whether one is active.
func (s ModeSelection) Limit() (kwh int, ok bool) {
	if s.kind != ModeBounded {
		return 0, false
	}
	return s.limitKWh, true
}

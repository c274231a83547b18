package session

import "testing"

func TestNewModeSelectionDefaultsToImmediate(t *testing.T) {
	s := NewModeSelection()

	if s.Kind() != ModeImmediate {
		t.Errorf("Kind() = %v, want ModeImmediate", s.Kind())
	}
	if _, ok := s.Limit(); ok {
		t.Error("immediate mode should carry no limit")
	}
}

func TestChooseBoundedStartsFromDefaultLimit(t *testing.T) {
	s := NewModeSelection()
	s.Choose(ModeBounded)

	limit, ok := s.Limit()
	if !ok {
		t.Fatal("bounded mode should carry a limit")
	}
	if limit != DefaultLimitKWh {
		t.Errorf("Limit() = %d, want default %d", limit, DefaultLimitKWh)
	}
}

func TestSwitchingAwayDiscardsLimit(t *testing.T) {
	s := NewModeSelection()
	s.Choose(ModeBounded)
	s.SetLimit(30)

	s.Choose(ModeOptimized)
	if _, ok := s.Limit(); ok {
		t.Error("limit should be discarded when leaving bounded mode")
	}

	// Switching back restores the default, not the discarded value
	s.Choose(ModeBounded)
	limit, _ := s.Limit()
	if limit != DefaultLimitKWh {
		t.Errorf("Limit() after switch back = %d, want default %d", limit, DefaultLimitKWh)
	}
}

func TestSetLimitClampsToBounds(t *testing.T) {
	tests := []struct {
		name string
		set  int
		want int
	}{
		{"below minimum clamps up", 3, MinLimitKWh},
		{"above maximum clamps down", 250, MaxLimitKWh},
		{"in range kept", 30, 30},
		{"minimum kept", MinLimitKWh, MinLimitKWh},
		{"maximum kept", MaxLimitKWh, MaxLimitKWh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewModeSelection()
			s.Choose(ModeBounded)
			s.SetLimit(tt.set)

			limit, _ := s.Limit()
			if limit != tt.want {
				t.Errorf("Limit() = %d, want %d", limit, tt.want)
			}
		})
	}
}

func TestSetLimitIgnoredOutsideBoundedMode(t *testing.T) {
	s := NewModeSelection()
	s.SetLimit(30)

	if _, ok := s.Limit(); ok {
		t.Error("SetLimit should be ignored unless bounded mode is active")
	}
}

func TestWireTags(t *testing.T) {
	tests := []struct {
		kind ModeKind
		want string
	}{
		{ModeImmediate, "CHARGE_NOW"},
		{ModeOptimized, "FULL_CHARGE"},
		{ModeBounded, "CUSTOM"},
	}

	for _, tt := range tests {
		if got := tt.kind.WireTag(); got != tt.want {
			t.Errorf("%v.WireTag() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Table maps pattern names to patterns. It is read-only after construction.
type Table struct {
	patterns map[PatternName]Pattern
	fallback PatternName
}

// NewTable validates every pattern. The first pattern is used for
// employees whose assigned pattern is not in the table.
func NewTable(patterns ...Pattern) (*Table, error) {
	if len(patterns) == 0 {
		return nil, ErrNoCheckpoints
	}
	t := &Table{
		patterns: make(map[PatternName]Pattern, len(patterns)),
		fallback: patterns[0].Name,
	}
	for _, p := range patterns {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := t.patterns[p.Name]; dup {
			return nil, fmt.Errorf("duplicate schedule pattern %q", p.Name)
		}
		t.patterns[p.Name] = p
	}
	return t, nil
}

// Get returns the named pattern.
func (t *Table) Get(name PatternName) (Pattern, error) {
	p, ok := t.patterns[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %s", ErrPatternNotFound, name)
	}
	return p, nil
}

// Resolve returns the named pattern, or the fallback pattern if it is unknown.
func (t *Table) Resolve(name PatternName) Pattern {
	if p, ok := t.patterns[name]; ok {
		return p
	}
	return t.patterns[t.fallback]
}

func (t *Table) Names() []PatternName {
	names := make([]PatternName, 0, len(t.patterns))
	for name := range t.patterns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Settings are the tunable times of the built-in patterns.
type Settings struct {
	NormalEntry         TimeOfDay
	NormalExit          TimeOfDay
	ToleranceMinutes    int
	ExtendedAltClose    *TimeOfDay
	ExtendedAltCloseDay time.Weekday
}

// DefaultSettings is the conventional 08:00-17:00 shift with a Friday 16:00
// close on the extended pattern.
func DefaultSettings() Settings {
	alt := MustTimeOfDay("16:00")
	return Settings{
		NormalEntry:         MustTimeOfDay("08:00"),
		NormalExit:          MustTimeOfDay("17:00"),
		ExtendedAltClose:    &alt,
		ExtendedAltCloseDay: time.Friday,
	}
}

// NormalPattern is the two-punch shift.
func NormalPattern(s Settings) Pattern {
	return Pattern{
		Name: PatternNormal,
		Checkpoints: []Checkpoint{
			{Label: "entrada", Expected: s.NormalEntry, ToleranceMinutes: s.ToleranceMinutes, Role: RoleEntry},
			{Label: "salida", Expected: s.NormalExit, Role: RoleExit},
		},
	}
}

// ExtendedPattern is the six-punch reconditioning shift with a morning
// break and a lunch break.
func ExtendedPattern(s Settings) Pattern {
	p := Pattern{
		Name: PatternExtended,
		Checkpoints: []Checkpoint{
			{Label: "entrada principal", Expected: MustTimeOfDay("07:00"), ToleranceMinutes: s.ToleranceMinutes, Role: RoleEntry},
			{Label: "salida descanso", Expected: MustTimeOfDay("09:30"), Role: RoleExit},
			{Label: "regreso descanso", Expected: MustTimeOfDay("09:50"), ToleranceMinutes: s.ToleranceMinutes, Role: RoleEntry},
			{Label: "salida almuerzo", Expected: MustTimeOfDay("12:40"), Role: RoleExit},
			{Label: "regreso almuerzo", Expected: MustTimeOfDay("13:40"), ToleranceMinutes: s.ToleranceMinutes, Role: RoleEntry},
			{Label: "salida final", Expected: MustTimeOfDay("17:00"), Role: RoleExit},
		},
	}
	if s.ExtendedAltClose != nil {
		p.AlternateClose = &AlternateClose{Weekday: s.ExtendedAltCloseDay, Expected: *s.ExtendedAltClose}
	}
	return p
}

// DefaultTable builds the normal and extended patterns from s.
func DefaultTable(s Settings) (*Table, error) {
	return NewTable(NormalPattern(s), ExtendedPattern(s))
}

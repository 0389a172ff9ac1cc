package schedule

import (
	"fmt"
	"time"
)

// PatternName identifies a schedule pattern assigned to an employee.
type PatternName string

const (
	PatternNormal   PatternName = "normal"
	PatternExtended PatternName = "extended"
)

var PatternNameValues = []string{
	string(PatternNormal),
	string(PatternExtended),
}

// Role tells whether a checkpoint expects an entrance or an exit reading.
type Role string

const (
	RoleEntry Role = "entry"
	RoleExit  Role = "exit"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// MustTimeOfDay is ParseTimeOfDay for compile-time constants.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the instant of t on the calendar day of date, in date's location.
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

type Checkpoint struct {
	Label            string
	Expected         TimeOfDay
	ToleranceMinutes int
	Role             Role
}

// AlternateClose replaces the expected time of a pattern's last checkpoint on one weekday.
type AlternateClose struct {
	Weekday  time.Weekday
	Expected TimeOfDay
}

type Pattern struct {
	Name           PatternName
	Checkpoints    []Checkpoint
	AlternateClose *AlternateClose
}

// Validate checks that roles alternate starting with an entry and that
// expected times strictly increase, on regular days and on the alternate day.
func (p Pattern) Validate() error {
	if p.Name == "" {
		return ErrPatternNameRequired
	}
	if len(p.Checkpoints) == 0 {
		return fmt.Errorf("pattern %s: %w", p.Name, ErrNoCheckpoints)
	}

	check := func(cps []Checkpoint) error {
		for i, cp := range cps {
			want := RoleEntry
			if i%2 == 1 {
				want = RoleExit
			}
			if cp.Role != want {
				return fmt.Errorf("pattern %s checkpoint %d (%s): %w", p.Name, i, cp.Label, ErrRolesNotAlternating)
			}
			if cp.ToleranceMinutes < 0 {
				return fmt.Errorf("pattern %s checkpoint %d (%s): %w", p.Name, i, cp.Label, ErrNegativeTolerance)
			}
			if i > 0 && cp.Expected.Minutes() <= cps[i-1].Expected.Minutes() {
				return fmt.Errorf("pattern %s checkpoint %d (%s): %w", p.Name, i, cp.Label, ErrTimesNotIncreasing)
			}
		}
		return nil
	}

	if err := check(p.Checkpoints); err != nil {
		return err
	}
	if p.AlternateClose != nil {
		if err := check(p.checkpointsFor(p.AlternateClose.Weekday)); err != nil {
			return err
		}
	}
	return nil
}

// CheckpointsOn returns the checkpoints that apply on the given date.
func (p Pattern) CheckpointsOn(date time.Time) []Checkpoint {
	return p.checkpointsFor(date.Weekday())
}

func (p Pattern) checkpointsFor(day time.Weekday) []Checkpoint {
	cps := make([]Checkpoint, len(p.Checkpoints))
	copy(cps, p.Checkpoints)
	if p.AlternateClose != nil && p.AlternateClose.Weekday == day && len(cps) > 0 {
		cps[len(cps)-1].Expected = p.AlternateClose.Expected
	}
	return cps
}

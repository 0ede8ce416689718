package domain

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrInvalidStatus is returned when text is neither "checked-off" nor "not checked-off".
	ErrInvalidStatus = errors.New("habit value must be 'checked-off' or 'not checked-off'")
	// ErrInvalidWeek is returned when a week is not a whole number of 1 or more.
	ErrInvalidWeek = errors.New("week must be a whole number of 1 or more")
)

// Habit identifies one of the fixed habit fields tracked on every record.
type Habit int

const (
	HealthyEating Habit = iota
	DailyExercise
	NoSmoke
	TimeOutdoors
	Blogging
)

// NumHabits is the number of habit fields on a record.
const NumHabits = 5

// Habits lists every habit in column order. Ties in aggregates resolve to the earlier entry.
var Habits = [NumHabits]Habit{HealthyEating, DailyExercise, NoSmoke, TimeOutdoors, Blogging}

var habitColumns = [NumHabits]string{
	"healthy_eating",
	"daily_exercise",
	"no_smoke",
	"time_outdoors",
	"blogging",
}

// Column returns the table column (and form field) name of the habit.
func (h Habit) Column() string {
	if h < 0 || int(h) >= NumHabits {
		return fmt.Sprintf("habit(%d)", int(h))
	}
	return habitColumns[h]
}

func (h Habit) String() string {
	return h.Column()
}

// Label returns the human readable name, e.g. "Healthy Eating".
func (h Habit) Label() string {
	return cases.Title(language.English).String(strings.ReplaceAll(h.Column(), "_", " "))
}

// Status is the check-off state of a single habit on a single day.
type Status int

const (
	NotCheckedOff Status = iota
	CheckedOff
)

const (
	checkedOffText    = "checked-off"
	notCheckedOffText = "not checked-off"
)

// ParseStatus converts the stored or typed text into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case checkedOffText:
		return CheckedOff, nil
	case notCheckedOffText:
		return NotCheckedOff, nil
	default:
		return NotCheckedOff, fmt.Errorf("%w: got %q", ErrInvalidStatus, s)
	}
}

func (s Status) String() string {
	if s == CheckedOff {
		return checkedOffText
	}
	return notCheckedOffText
}

// Value implements driver.Valuer so only the two recognised strings reach the table.
func (s Status) Value() (driver.Value, error) {
	return s.String(), nil
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	var text string
	switch v := src.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
	parsed, err := ParseStatus(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Checks holds one Status per habit, indexed by Habit.
type Checks [NumHabits]Status

// AllCheckedOff reports whether every habit is checked off.
func (c Checks) AllCheckedOff() bool {
	for _, s := range c {
		if s != CheckedOff {
			return false
		}
	}
	return true
}

// Record is one row of the habit table: the check-offs for a (week, date) pair.
type Record struct {
	ID     int64
	Week   int
	Date   string
	Checks Checks
}

// ParseWeek converts user text to a week number.
func ParseWeek(s string) (int, error) {
	week, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || week < 1 {
		return 0, fmt.Errorf("%w: got %q", ErrInvalidWeek, s)
	}
	return week, nil
}

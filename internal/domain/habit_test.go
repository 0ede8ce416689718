package domain

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected Status
		wantErr  bool
	}{
		{name: "checked off", input: "checked-off", expected: CheckedOff},
		{name: "not checked off", input: "not checked-off", expected: NotCheckedOff},
		{name: "wrong case", input: "Checked-Off", wantErr: true},
		{name: "padded", input: " checked-off", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "yes", input: "yes", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStatus(tc.input)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("Expected ErrInvalidStatus for %q, got %v", tc.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q) returned an unexpected error: %v", tc.input, err)
			}
			if got != tc.expected {
				t.Errorf("Expected %v, but got %v", tc.expected, got)
			}
			if got.String() != tc.input {
				t.Errorf("Expected String() to round trip to %q, got %q", tc.input, got.String())
			}
		})
	}
}

func TestStatusScan(t *testing.T) {
	var s Status
	if err := s.Scan([]byte("checked-off")); err != nil {
		t.Fatalf("Scan returned an unexpected error: %v", err)
	}
	if s != CheckedOff {
		t.Errorf("Expected CheckedOff, got %v", s)
	}
	if err := s.Scan("maybe"); err == nil {
		t.Error("Expected an error scanning an unknown value")
	}
	if err := s.Scan(int64(1)); err == nil {
		t.Error("Expected an error scanning a non-text value")
	}
}

func TestHabitNames(t *testing.T) {
	expected := map[Habit][2]string{
		HealthyEating: {"healthy_eating", "Healthy Eating"},
		DailyExercise: {"daily_exercise", "Daily Exercise"},
		NoSmoke:       {"no_smoke", "No Smoke"},
		TimeOutdoors:  {"time_outdoors", "Time Outdoors"},
		Blogging:      {"blogging", "Blogging"},
	}
	for _, h := range Habits {
		want := expected[h]
		if h.Column() != want[0] {
			t.Errorf("Expected column %q, got %q", want[0], h.Column())
		}
		if h.Label() != want[1] {
			t.Errorf("Expected label %q, got %q", want[1], h.Label())
		}
	}
}

func TestAllCheckedOff(t *testing.T) {
	var c Checks
	for i := range c {
		c[i] = CheckedOff
	}
	if !c.AllCheckedOff() {
		t.Error("Expected all habits to be checked off")
	}
	c[NoSmoke] = NotCheckedOff
	if c.AllCheckedOff() {
		t.Error("Expected a single unchecked habit to break AllCheckedOff")
	}
}

func TestParseWeek(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		wantErr  bool
	}{
		{input: "1", expected: 1},
		{input: " 23 ", expected: 23},
		{input: "0", wantErr: true},
		{input: "-2", wantErr: true},
		{input: "two", wantErr: true},
		{input: "1.5", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ParseWeek(tc.input)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidWeek) {
				t.Errorf("ParseWeek(%q): expected ErrInvalidWeek, got %v", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWeek(%q) returned an unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("ParseWeek(%q) = %d, want %d", tc.input, got, tc.expected)
		}
	}
}

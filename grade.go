package fsrs45

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Grade is the reviewer's assessment of recall quality.
type Grade int

const (
	Again Grade = iota + 1 // Forgot the card.
	Hard                   // Recalled with serious difficulty.
	Good                   // Recalled after some hesitation.
	Easy                   // Recalled effortlessly.
)

// Grades lists every valid grade in ascending order.
var Grades = [...]Grade{Again, Hard, Good, Easy}

var (
	gradeNames  = [...]string{Again: "Again", Hard: "Hard", Good: "Good", Easy: "Easy"}
	gradeByName = map[string]Grade{
		"again": Again,
		"hard":  Hard,
		"good":  Good,
		"easy":  Easy,
		"1":     Again,
		"2":     Hard,
		"3":     Good,
		"4":     Easy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Grade(0)
	_ json.Marshaler           = Grade(0)
	_ json.Unmarshaler         = (*Grade)(nil)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
)

// ParseGrade accepts a grade name ("again", "Good", ...) in any case or its
// digit ("1".."4").
func ParseGrade(s string) (Grade, error) {
	g, ok := gradeByName[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, s)
	}
	return g, nil
}

// String returns the name of the grade ("Again", "Hard", "Good", "Easy").
// For invalid values it returns "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// IsValid reports whether g is one of Again, Hard, Good or Easy.
func (g Grade) IsValid() bool {
	return g >= Again && g <= Easy
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Both the string form and the
// bare number 1..4 are accepted.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if !Grade(n).IsValid() {
			return fmt.Errorf("%w: %d", ErrInvalidGrade, n)
		}
		*g = Grade(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGrade, data)
	}
	return g.UnmarshalText([]byte(s))
}

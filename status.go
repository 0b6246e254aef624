package fsrs45

import (
	"encoding"
	"encoding/json"
	"fmt"
)

// Status tags a ReviewState as never reviewed or reviewed.
type Status int

const (
	Unseen   Status = iota + 1 // No review has happened yet.
	Reviewed                   // At least one review; memory state present.
)

var (
	statusNames  = [...]string{Unseen: "unseen", Reviewed: "reviewed"}
	statusByName = map[string]Status{
		"unseen":   Unseen,
		"reviewed": Reviewed,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Status(0)
	_ json.Marshaler           = Status(0)
	_ json.Unmarshaler         = (*Status)(nil)
	_ encoding.TextMarshaler   = Status(0)
	_ encoding.TextUnmarshaler = (*Status)(nil)
)

func (s Status) isValid() bool {
	return s >= Unseen && s <= Reviewed
}

// String returns "unseen" or "reviewed". For invalid values it returns "Status(n)".
func (s Status) String() string {
	if s.isValid() {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses "unseen" or "reviewed".
func ParseStatus(text string) (Status, error) {
	v, ok := statusByName[text]
	if !ok {
		return 0, fmt.Errorf("fsrs45: invalid status: %q", text)
	}
	return v, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.isValid() {
		return nil, fmt.Errorf("fsrs45: invalid status: %d", int(s))
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalJSON implements json.Marshaler. Status serializes as a JSON string.
func (s Status) MarshalJSON() ([]byte, error) {
	text, err := s.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("fsrs45: invalid status: %s", data)
	}
	return s.UnmarshalText([]byte(str))
}

package fsrs45

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Memory is the memory state of a card that has been reviewed at least once.
type Memory struct {
	Stability      float64   // S, in days.
	Difficulty     float64   // D, in [1, 10].
	LastReviewedAt time.Time // Millisecond precision, UTC.
	DueAt          time.Time // Millisecond precision, UTC.
	ReviewCount    int
	LapseCount     int
}

// Validate checks the invariants every scheduled Memory satisfies.
func (m Memory) Validate() error {
	switch {
	case math.IsNaN(m.Stability) || math.IsInf(m.Stability, 0) || m.Stability <= 0:
		return fmt.Errorf("%w: stability %v", ErrInvalidState, m.Stability)
	case math.IsNaN(m.Difficulty) || m.Difficulty < 1 || m.Difficulty > 10:
		return fmt.Errorf("%w: difficulty %v", ErrInvalidState, m.Difficulty)
	case m.ReviewCount < 1:
		return fmt.Errorf("%w: review count %d", ErrInvalidState, m.ReviewCount)
	case m.LapseCount < 0 || m.LapseCount > m.ReviewCount:
		return fmt.Errorf("%w: lapse count %d of %d reviews", ErrInvalidState, m.LapseCount, m.ReviewCount)
	case m.DueAt.Before(m.LastReviewedAt):
		return fmt.Errorf("%w: due %d before last review %d",
			ErrInvalidState, m.DueAt.UnixMilli(), m.LastReviewedAt.UnixMilli())
	case !intervalAboveFloor(m.LastReviewedAt.UnixMilli(), m.DueAt.UnixMilli()):
		return fmt.Errorf("%w: due %d less than %v days after last review %d",
			ErrInvalidState, m.DueAt.UnixMilli(), minIntervalDays, m.LastReviewedAt.UnixMilli())
	}
	return nil
}

// intervalAboveFloor reports whether dueMS lies at least minIntervalMS after
// lastMS. A due time clamped at math.MaxInt64 always passes.
func intervalAboveFloor(lastMS, dueMS int64) bool {
	if dueMS == math.MaxInt64 {
		return true
	}
	return dueMS >= lastMS && uint64(dueMS)-uint64(lastMS) >= minIntervalMS
}

// ReviewState is the scheduling state of one card. It is either Unseen or
// Reviewed; the zero value is Unseen. A Reviewed state carries a complete
// Memory, so stability and difficulty are always present together.
//
// ReviewState values are immutable. Schedule returns a new state rather than
// changing the prior one.
type ReviewState struct {
	mem *Memory
}

// NewReviewed wraps a Memory into a Reviewed state after validating it.
func NewReviewed(m Memory) (ReviewState, error) {
	if err := m.Validate(); err != nil {
		return ReviewState{}, err
	}
	m.LastReviewedAt = truncMillis(m.LastReviewedAt)
	m.DueAt = truncMillis(m.DueAt)
	return ReviewState{mem: &m}, nil
}

// Status reports whether the state is Unseen or Reviewed.
func (s ReviewState) Status() Status {
	if s.mem == nil {
		return Unseen
	}
	return Reviewed
}

// IsUnseen reports whether the card has never been reviewed.
func (s ReviewState) IsUnseen() bool {
	return s.mem == nil
}

// Memory returns a copy of the memory state. ok is false for an Unseen state.
func (s ReviewState) Memory() (m Memory, ok bool) {
	if s.mem == nil {
		return Memory{}, false
	}
	return *s.mem, true
}

// Equal reports whether two states hold the same status and values.
func (s ReviewState) Equal(o ReviewState) bool {
	if s.mem == nil || o.mem == nil {
		return s.mem == nil && o.mem == nil
	}
	a, b := *s.mem, *o.mem
	return a.Stability == b.Stability &&
		a.Difficulty == b.Difficulty &&
		a.LastReviewedAt.Equal(b.LastReviewedAt) &&
		a.DueAt.Equal(b.DueAt) &&
		a.ReviewCount == b.ReviewCount &&
		a.LapseCount == b.LapseCount
}

// reviewStateJSON is the serialized form of a ReviewState. Timestamps are
// integer Unix milliseconds; S and D use encoding/json's shortest
// round-trip float formatting.
type reviewStateJSON struct {
	Status         Status   `json:"status"`
	Stability      *float64 `json:"stability,omitempty"`
	Difficulty     *float64 `json:"difficulty,omitempty"`
	LastReviewedAt *int64   `json:"last_reviewed_at,omitempty"`
	DueAt          *int64   `json:"due_at,omitempty"`
	ReviewCount    int      `json:"review_count"`
	LapseCount     int      `json:"lapse_count"`
}

// MarshalJSON implements json.Marshaler.
func (s ReviewState) MarshalJSON() ([]byte, error) {
	if s.mem == nil {
		return json.Marshal(reviewStateJSON{Status: Unseen})
	}
	m := *s.mem
	last := m.LastReviewedAt.UnixMilli()
	due := m.DueAt.UnixMilli()
	return json.Marshal(reviewStateJSON{
		Status:         Reviewed,
		Stability:      &m.Stability,
		Difficulty:     &m.Difficulty,
		LastReviewedAt: &last,
		DueAt:          &due,
		ReviewCount:    m.ReviewCount,
		LapseCount:     m.LapseCount,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Documents that populate only
// some of stability, difficulty and the timestamps are rejected with
// ErrPartialState. A missing status is inferred from the fields present.
func (s *ReviewState) UnmarshalJSON(data []byte) error {
	var j reviewStateJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}

	set := 0
	for _, present := range []bool{j.Stability != nil, j.Difficulty != nil, j.LastReviewedAt != nil, j.DueAt != nil} {
		if present {
			set++
		}
	}

	status := j.Status
	if status == 0 {
		status = Unseen
		if set > 0 {
			status = Reviewed
		}
	}

	switch status {
	case Unseen:
		if set > 0 || j.ReviewCount != 0 || j.LapseCount != 0 {
			return fmt.Errorf("%w: unseen state carries memory fields", ErrPartialState)
		}
		*s = ReviewState{}
		return nil
	case Reviewed:
		if set != 4 {
			return fmt.Errorf("%w: %d of 4 memory fields present", ErrPartialState, set)
		}
		st, err := NewReviewed(Memory{
			Stability:      *j.Stability,
			Difficulty:     *j.Difficulty,
			LastReviewedAt: fromMillis(*j.LastReviewedAt),
			DueAt:          fromMillis(*j.DueAt),
			ReviewCount:    j.ReviewCount,
			LapseCount:     j.LapseCount,
		})
		if err != nil {
			return err
		}
		*s = st
		return nil
	default:
		return fmt.Errorf("fsrs45: invalid status: %d", int(status))
	}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func truncMillis(t time.Time) time.Time {
	return fromMillis(t.UnixMilli())
}

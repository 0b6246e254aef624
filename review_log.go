package fsrs45

import (
	"encoding/json"
	"time"
)

// ReviewLog records a single review event for a card.
type ReviewLog struct {
	CardID     string
	Grade      Grade
	ReviewedAt time.Time
	Duration   *time.Duration // Time spent answering, optional.
}

type reviewLogJSON struct {
	CardID     string `json:"card_id"`
	Grade      Grade  `json:"grade"`
	ReviewedAt int64  `json:"reviewed_at"`           // Unix milliseconds.
	DurationMS *int64 `json:"duration_ms,omitempty"` // Milliseconds.
}

// MarshalJSON implements json.Marshaler.
func (l ReviewLog) MarshalJSON() ([]byte, error) {
	j := reviewLogJSON{
		CardID:     l.CardID,
		Grade:      l.Grade,
		ReviewedAt: l.ReviewedAt.UnixMilli(),
	}
	if l.Duration != nil {
		ms := l.Duration.Milliseconds()
		j.DurationMS = &ms
	}
	return json.Marshal(j)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ReviewLog) UnmarshalJSON(data []byte) error {
	var j reviewLogJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*l = ReviewLog{
		CardID:     j.CardID,
		Grade:      j.Grade,
		ReviewedAt: fromMillis(j.ReviewedAt),
	}
	if j.DurationMS != nil {
		d := time.Duration(*j.DurationMS) * time.Millisecond
		l.Duration = &d
	}
	return nil
}

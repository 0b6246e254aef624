package fsrs45

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestReviewLogJSONRoundTrip(t *testing.T) {
	dur := 2500 * time.Millisecond
	rl := ReviewLog{
		CardID:     "c-7",
		Grade:      Hard,
		ReviewedAt: t0.Add(123 * time.Millisecond),
		Duration:   &dur,
	}

	data, err := json.Marshal(rl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got ReviewLog
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.CardID != rl.CardID || got.Grade != rl.Grade || !got.ReviewedAt.Equal(rl.ReviewedAt) {
		t.Errorf("round-trip mismatch: got %+v", got)
	}
	if got.Duration == nil || *got.Duration != dur {
		t.Errorf("Duration = %v, want %v", got.Duration, dur)
	}
}

func TestReviewLogJSONFields(t *testing.T) {
	rl := ReviewLog{
		CardID:     "c-1",
		Grade:      Easy,
		ReviewedAt: time.UnixMilli(1700000000123),
	}
	data, err := json.Marshal(rl)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"card_id":"c-1"`, `"grade":"Easy"`, `"reviewed_at":1700000000123`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "duration_ms") {
		t.Errorf("nil Duration should be omitted, got %s", s)
	}
}

func TestReviewLogJSONNumericGrade(t *testing.T) {
	var rl ReviewLog
	if err := json.Unmarshal([]byte(`{"card_id":"x","grade":1,"reviewed_at":0}`), &rl); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rl.Grade != Again {
		t.Errorf("Grade = %v, want Again", rl.Grade)
	}
	if !rl.ReviewedAt.Equal(time.UnixMilli(0)) || rl.ReviewedAt.Location() != time.UTC {
		t.Errorf("ReviewedAt = %v, want epoch UTC", rl.ReviewedAt)
	}
}

func TestReviewLogJSONInvalidGrade(t *testing.T) {
	var rl ReviewLog
	if err := json.Unmarshal([]byte(`{"card_id":"x","grade":"Perfect","reviewed_at":0}`), &rl); err == nil {
		t.Error("invalid grade should return error")
	}
}

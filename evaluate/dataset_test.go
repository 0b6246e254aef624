package evaluate

import (
	"testing"
	"time"

	"github.com/sky-flux/fsrs45"
)

func TestCardHistoriesEmpty(t *testing.T) {
	if got := cardHistories(nil); len(got) != 0 {
		t.Errorf("cardHistories(nil) returned %d histories, want 0", len(got))
	}
}

func TestCardHistoriesOrdersByTime(t *testing.T) {
	logs := []fsrs45.ReviewLog{
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0.Add(10 * time.Minute)},
		{CardID: "a", Grade: fsrs45.Again, ReviewedAt: t0},
		{CardID: "a", Grade: fsrs45.Easy, ReviewedAt: t0.Add(34 * time.Hour)},
	}
	h := cardHistories(logs)["a"]
	if len(h) != 3 {
		t.Fatalf("card a has %d reviews, want 3", len(h))
	}

	wantGrades := []fsrs45.Grade{fsrs45.Again, fsrs45.Good, fsrs45.Easy}
	wantRecalled := []float64{0, 1, 1}
	wantScored := []bool{false, false, true}
	for i := range h {
		if h[i].grade != wantGrades[i] {
			t.Errorf("review %d grade = %v, want %v", i, h[i].grade, wantGrades[i])
		}
		if h[i].recalled != wantRecalled[i] {
			t.Errorf("review %d recalled = %v, want %v", i, h[i].recalled, wantRecalled[i])
		}
		if h[i].scored != wantScored[i] {
			t.Errorf("review %d scored = %v, want %v", i, h[i].scored, wantScored[i])
		}
	}
	if h[0].gapDays != 0 {
		t.Errorf("first gapDays = %v, want 0", h[0].gapDays)
	}
	assertFloatEval(t, "second gapDays", h[1].gapDays, 10.0/(24*60))
	assertFloatEval(t, "third gapDays", h[2].gapDays, 34.0/24-10.0/(24*60))
}

func TestCardHistoriesStableForEqualTimes(t *testing.T) {
	logs := []fsrs45.ReviewLog{
		{CardID: "a", Grade: fsrs45.Hard, ReviewedAt: t0},
		{CardID: "a", Grade: fsrs45.Easy, ReviewedAt: t0},
	}
	h := cardHistories(logs)["a"]
	if h[0].grade != fsrs45.Hard || h[1].grade != fsrs45.Easy {
		t.Errorf("grades = %v %v, want Hard Easy", h[0].grade, h[1].grade)
	}
}

func TestCardHistoriesMultiCard(t *testing.T) {
	logs := []fsrs45.ReviewLog{
		{CardID: "b", Grade: fsrs45.Hard, ReviewedAt: t0},
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0},
		{CardID: "b", Grade: fsrs45.Good, ReviewedAt: t0.Add(time.Hour)},
	}
	got := cardHistories(logs)

	if len(got) != 2 {
		t.Fatalf("got %d histories, want 2", len(got))
	}
	if len(got["a"]) != 1 || len(got["b"]) != 2 {
		t.Errorf("history lengths = %d, %d, want 1, 2", len(got["a"]), len(got["b"]))
	}
	if ids := sortedCardIDs(got); len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("sortedCardIDs = %v, want [a b]", ids)
	}
}

func TestScoredReviews(t *testing.T) {
	logs := []fsrs45.ReviewLog{
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0},
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0.Add(2 * time.Hour)},
		{CardID: "a", Grade: fsrs45.Good, ReviewedAt: t0.Add(50 * time.Hour)},
		{CardID: "b", Grade: fsrs45.Again, ReviewedAt: t0},
		{CardID: "b", Grade: fsrs45.Good, ReviewedAt: t0.Add(24 * time.Hour)},
	}
	if got := scoredReviews(cardHistories(logs)); got != 2 {
		t.Errorf("scoredReviews = %d, want 2", got)
	}
}

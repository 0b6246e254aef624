package fsrs45_test

import (
	"testing"
	"time"

	"github.com/sky-flux/fsrs45"
)

// BenchmarkSchedule measures the time to process a single review.
func BenchmarkSchedule(b *testing.B) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := fsrs45.Schedule(fsrs45.ReviewState{}, fsrs45.Good, now)
	now = now.Add(24 * time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		st = fsrs45.Schedule(st, fsrs45.Good, now)
		now = now.Add(24 * time.Hour)
	}
}

// BenchmarkRetrievability measures the forgetting curve alone.
func BenchmarkRetrievability(b *testing.B) {
	for i := 0; i < b.N; i++ {
		fsrs45.Retrievability(5, 3.7145)
	}
}

// BenchmarkPreview measures the time to preview all four grades.
func BenchmarkPreview(b *testing.B) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := fsrs45.Schedule(fsrs45.ReviewState{}, fsrs45.Good, now)
	now = now.Add(3 * 24 * time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		fsrs45.Preview(st, now)
	}
}

// BenchmarkReplay measures rebuilding a state from a 100-review history.
func BenchmarkReplay(b *testing.B) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	logs := make([]fsrs45.ReviewLog, 100)
	for i := range logs {
		logs[i] = fsrs45.ReviewLog{
			CardID:     "bench",
			Grade:      fsrs45.Grades[i%4],
			ReviewedAt: now.Add(time.Duration(i) * 36 * time.Hour),
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fsrs45.Replay("bench", logs); err != nil {
			b.Fatal(err)
		}
	}
}

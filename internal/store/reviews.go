package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
)

// Review grades a card at time now, stores its new state and appends a review
// log, all in one transaction. duration is optional.
func (s *Store) Review(ctx context.Context, id string, grade fsrs45.Grade, now time.Time, duration *time.Duration) (*Card, error) {
	if !grade.IsValid() {
		return nil, fmt.Errorf("%w: %d", fsrs45.ErrInvalidGrade, int(grade))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var card *Card
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		c.State = fsrs45.Schedule(c.State, grade, now)
		c.UpdatedAt = s.now()
		if err := updateState(ctx, tx, id, c.State, c.UpdatedAt); err != nil {
			return err
		}
		log := fsrs45.ReviewLog{CardID: id, Grade: grade, ReviewedAt: now, Duration: duration}
		if err := insertLog(ctx, tx, log); err != nil {
			return err
		}
		card = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	m, _ := card.State.Memory()
	s.log.Debug("card reviewed",
		zap.String("card_id", id),
		zap.Stringer("grade", grade),
		zap.Float64("stability", m.Stability),
		zap.Float64("difficulty", m.Difficulty),
		zap.Time("due_at", m.DueAt))
	return card, nil
}

// ReviewLogs returns the review logs of one card in review order.
func (s *Store) ReviewLogs(ctx context.Context, id string) ([]fsrs45.ReviewLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if _, err := getCard(ctx, s.db, id); err != nil {
		return nil, err
	}
	return queryLogs(ctx, s.db, `WHERE card_id = ?`, id)
}

// AllReviewLogs returns every review log ordered by card and review time.
func (s *Store) AllReviewLogs(ctx context.Context) ([]fsrs45.ReviewLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return queryLogs(ctx, s.db, ``)
}

// Reset returns every card to the unseen state and deletes all review logs.
// Card content is kept. It returns the number of cards reset.
func (s *Store) Reset(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var n int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM review_logs`); err != nil {
			return fmt.Errorf("store: delete review logs: %w", err)
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE cards SET
				status = 'unseen', stability = NULL, difficulty = NULL,
				last_reviewed_at = NULL, due_at = NULL,
				review_count = 0, lapse_count = 0, updated_at = ?
		`, s.now().UnixMilli())
		if err != nil {
			return fmt.Errorf("store: reset cards: %w", err)
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("progress reset", zap.Int64("cards", n))
	return n, nil
}

// Reschedule rebuilds a card's state by replaying its review logs from the
// unseen state. An unseen card without logs stays unseen. A reviewed card
// with fewer logs than reviews is not touched and ErrIncompleteHistory is
// returned.
func (s *Store) Reschedule(ctx context.Context, id string) (*Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var card *Card
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		c, err := getCard(ctx, tx, id)
		if err != nil {
			return err
		}
		logs, err := queryLogs(ctx, tx, `WHERE card_id = ?`, id)
		if err != nil {
			return err
		}
		if m, ok := c.State.Memory(); ok && len(logs) < m.ReviewCount {
			return fmt.Errorf("%w: card %q has %d logs for %d reviews",
				ErrIncompleteHistory, id, len(logs), m.ReviewCount)
		}
		st, err := fsrs45.Replay(id, logs)
		if err != nil {
			return fmt.Errorf("store: replay card %q: %w", id, err)
		}
		c.State = st
		c.UpdatedAt = s.now()
		if err := updateState(ctx, tx, id, st, c.UpdatedAt); err != nil {
			return err
		}
		card = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("card rescheduled", zap.String("card_id", id))
	return card, nil
}

func insertLog(ctx context.Context, q querier, l fsrs45.ReviewLog) error {
	// Log IDs sort by review time.
	ms := max(l.ReviewedAt.UnixMilli(), 0)
	id, err := ulid.New(uint64(ms), ulid.DefaultEntropy())
	if err != nil {
		return fmt.Errorf("store: new review log id: %w", err)
	}

	var durationMS sql.NullInt64
	if l.Duration != nil {
		durationMS = sql.NullInt64{Int64: l.Duration.Milliseconds(), Valid: true}
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO review_logs (id, card_id, grade, reviewed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?)
	`, id.String(), l.CardID, int(l.Grade), l.ReviewedAt.UnixMilli(), durationMS)
	if err != nil {
		return fmt.Errorf("store: insert review log: %w", err)
	}
	return nil
}

func queryLogs(ctx context.Context, q querier, where string, args ...any) ([]fsrs45.ReviewLog, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT card_id, grade, reviewed_at, duration_ms
		FROM review_logs `+where+`
		ORDER BY card_id, reviewed_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query review logs: %w", err)
	}
	defer rows.Close()

	var logs []fsrs45.ReviewLog
	for rows.Next() {
		var (
			l          fsrs45.ReviewLog
			grade      int
			reviewedAt int64
			durationMS sql.NullInt64
		)
		if err := rows.Scan(&l.CardID, &grade, &reviewedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("store: scan review log: %w", err)
		}
		l.Grade = fsrs45.Grade(grade)
		l.ReviewedAt = time.UnixMilli(reviewedAt).UTC()
		if durationMS.Valid {
			d := time.Duration(durationMS.Int64) * time.Millisecond
			l.Duration = &d
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate review logs: %w", err)
	}
	return logs, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1"

// ExportFormat is the top-level structure of a JSON export.
type ExportFormat struct {
	Version         string             `json:"version"`
	Model           string             `json:"model"`
	TargetRetention float64            `json:"target_retention"`
	ExportedAt      int64              `json:"exported_at"` // Unix milliseconds.
	Cards           []ExportCard       `json:"cards"`
	ReviewLogs      []fsrs45.ReviewLog `json:"review_logs,omitempty"`
}

// ExportCard is a card in export format.
type ExportCard struct {
	ID    string             `json:"id"`
	Front string             `json:"front"`
	Back  string             `json:"back"`
	State fsrs45.ReviewState `json:"state"`
}

// ExportOptions controls ExportJSON.
type ExportOptions struct {
	IncludeLogs bool
}

// ExportJSON writes all cards, and optionally their review logs, to w as an
// ExportFormat document. Stability and difficulty are written in shortest
// round-trip form so an import restores them bit for bit. Rows are read
// into memory first; w is written after the store lock is released, so a
// slow writer does not block reviews or imports.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, opts ExportOptions) error {
	exportedAt, cards, logs, err := s.exportSnapshot(ctx, opts)
	if err != nil {
		return err
	}

	header, err := json.Marshal(struct {
		Version         string  `json:"version"`
		Model           string  `json:"model"`
		TargetRetention float64 `json:"target_retention"`
		ExportedAt      int64   `json:"exported_at"`
	}{ExportVersion, fsrs45.ModelVersion, fsrs45.TargetRetention, exportedAt})
	if err != nil {
		return fmt.Errorf("store: encode export header: %w", err)
	}
	// Reopen the header object to append the arrays.
	if _, err := w.Write(header[:len(header)-1]); err != nil {
		return fmt.Errorf("store: write header: %w", err)
	}
	if _, err := io.WriteString(w, `,"cards":[`); err != nil {
		return fmt.Errorf("store: write header: %w", err)
	}

	enc := json.NewEncoder(w)
	for i, c := range cards {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return fmt.Errorf("store: write separator: %w", err)
			}
		}
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("store: encode card %q: %w", c.ID, err)
		}
	}
	if _, err := io.WriteString(w, "]"); err != nil {
		return fmt.Errorf("store: write cards end: %w", err)
	}

	if len(logs) > 0 {
		if _, err := io.WriteString(w, `,"review_logs":`); err != nil {
			return fmt.Errorf("store: write review logs: %w", err)
		}
		if err := enc.Encode(logs); err != nil {
			return fmt.Errorf("store: encode review logs: %w", err)
		}
	}

	if _, err := io.WriteString(w, "}\n"); err != nil {
		return fmt.Errorf("store: write footer: %w", err)
	}

	s.log.Info("exported cards", zap.Int("cards", len(cards)), zap.Bool("logs", opts.IncludeLogs))
	return nil
}

// exportSnapshot reads everything ExportJSON writes under a single read lock.
func (s *Store) exportSnapshot(ctx context.Context, opts ExportOptions) (int64, []ExportCard, []fsrs45.ReviewLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, nil, nil, ErrStoreClosed
	}
	exportedAt := s.now().UnixMilli()

	rows, err := s.db.QueryContext(ctx, `SELECT `+cardColumns+` FROM cards ORDER BY id`)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("store: query cards: %w", err)
	}
	defer rows.Close()

	var cards []ExportCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return 0, nil, nil, err
		}
		cards = append(cards, ExportCard{ID: c.ID, Front: c.Front, Back: c.Back, State: c.State})
	}
	if err := rows.Err(); err != nil {
		return 0, nil, nil, fmt.Errorf("store: iterate cards: %w", err)
	}

	var logs []fsrs45.ReviewLog
	if opts.IncludeLogs {
		if logs, err = queryLogs(ctx, s.db, ``); err != nil {
			return 0, nil, nil, err
		}
	}
	return exportedAt, cards, logs, nil
}

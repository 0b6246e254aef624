package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
)

// Card is a flashcard with its scheduling state.
type Card struct {
	ID        string             `json:"id"`
	Front     string             `json:"front"`
	Back      string             `json:"back"`
	State     fsrs45.ReviewState `json:"state"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewCard holds the fields of a card to add. An empty ID is replaced by a
// random UUID.
type NewCard struct {
	ID    string `json:"id,omitempty"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// ListFilter narrows ListCards. Zero fields do not filter.
type ListFilter struct {
	Status    fsrs45.Status // Unseen or Reviewed.
	DueBefore time.Time     // Only reviewed cards due strictly before this time.
	OrderBy   string        // "id" (default) or "due".
	Limit     int
}

// Stats counts cards by state.
type Stats struct {
	Total    int `json:"total"`
	Unseen   int `json:"unseen"`
	Reviewed int `json:"reviewed"`
	Due      int `json:"due"`
}

const cardColumns = "id, front, back, status, stability, difficulty, last_reviewed_at, due_at, review_count, lapse_count, created_at, updated_at"

// AddCard inserts a new unseen card.
func (s *Store) AddCard(ctx context.Context, nc NewCard) (*Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	nc.ID = strings.TrimSpace(nc.ID)
	if nc.ID == "" {
		nc.ID = uuid.NewString()
	}
	if strings.TrimSpace(nc.Front) == "" {
		return nil, fmt.Errorf("%w: front is required", ErrInvalidCard)
	}

	now := s.now()
	card := &Card{ID: nc.ID, Front: nc.Front, Back: nc.Back, CreatedAt: now, UpdatedAt: now}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		exists, err := cardExists(ctx, tx, card.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %q", ErrAlreadyExists, card.ID)
		}
		return insertCard(ctx, tx, card)
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug("card added", zap.String("card_id", card.ID))
	return card, nil
}

// GetCard returns the card with the given ID, or ErrNotFound.
func (s *Store) GetCard(ctx context.Context, id string) (*Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	return getCard(ctx, s.db, id)
}

// ListCards returns the cards matching f.
func (s *Store) ListCards(ctx context.Context, f ListFilter) ([]Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	q := sq.Select(cardColumns).From("cards")
	if f.Status != 0 {
		q = q.Where(sq.Eq{"status": f.Status.String()})
	}
	if !f.DueBefore.IsZero() {
		q = q.Where(sq.Lt{"due_at": f.DueBefore.UnixMilli()})
	}
	switch f.OrderBy {
	case "", "id":
		q = q.OrderBy("id ASC")
	case "due":
		// Unseen cards have no due time and sort last.
		q = q.OrderBy("due_at IS NULL", "due_at ASC", "id ASC")
	default:
		return nil, fmt.Errorf("store: list cards: unknown order %q", f.OrderBy)
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("store: build list query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate cards: %w", err)
	}
	return cards, nil
}

// Stats counts all cards, and the reviewed cards due at or before now.
func (s *Store) Stats(ctx context.Context, now time.Time) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, ErrStoreClosed
	}

	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(status = 'unseen'), 0),
			COALESCE(SUM(status = 'reviewed'), 0),
			COALESCE(SUM(due_at <= ?), 0)
		FROM cards
	`, now.UnixMilli()).Scan(&st.Total, &st.Unseen, &st.Reviewed, &st.Due)
	if err != nil {
		return Stats{}, fmt.Errorf("store: stats: %w", err)
	}
	return st, nil
}

// DeleteCard removes a card and its review logs.
func (s *Store) DeleteCard(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete card: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	s.log.Debug("card deleted", zap.String("card_id", id))
	return nil
}

func cardExists(ctx context.Context, q querier, id string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("store: check card %q: %w", id, err)
	}
	return true, nil
}

func getCard(ctx context.Context, q querier, id string) (*Card, error) {
	row := q.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c, err
}

func insertCard(ctx context.Context, q querier, c *Card) error {
	cols := stateColumns(c.State)
	_, err := q.ExecContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		c.ID, c.Front, c.Back,
		cols.status, cols.stability, cols.difficulty, cols.lastReviewedAt, cols.dueAt,
		cols.reviewCount, cols.lapseCount,
		c.CreatedAt.UnixMilli(), c.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store: insert card %q: %w", c.ID, err)
	}
	return nil
}

// updateState overwrites the scheduling state of a card.
func updateState(ctx context.Context, q querier, id string, st fsrs45.ReviewState, now time.Time) error {
	cols := stateColumns(st)
	res, err := q.ExecContext(ctx, `
		UPDATE cards SET
			status = ?, stability = ?, difficulty = ?, last_reviewed_at = ?, due_at = ?,
			review_count = ?, lapse_count = ?, updated_at = ?
		WHERE id = ?
	`,
		cols.status, cols.stability, cols.difficulty, cols.lastReviewedAt, cols.dueAt,
		cols.reviewCount, cols.lapseCount, now.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("store: update card %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// stateCols is a ReviewState flattened into nullable columns.
type stateCols struct {
	status         string
	stability      sql.NullFloat64
	difficulty     sql.NullFloat64
	lastReviewedAt sql.NullInt64
	dueAt          sql.NullInt64
	reviewCount    int
	lapseCount     int
}

func stateColumns(st fsrs45.ReviewState) stateCols {
	m, ok := st.Memory()
	if !ok {
		return stateCols{status: fsrs45.Unseen.String()}
	}
	return stateCols{
		status:         fsrs45.Reviewed.String(),
		stability:      sql.NullFloat64{Float64: m.Stability, Valid: true},
		difficulty:     sql.NullFloat64{Float64: m.Difficulty, Valid: true},
		lastReviewedAt: sql.NullInt64{Int64: m.LastReviewedAt.UnixMilli(), Valid: true},
		dueAt:          sql.NullInt64{Int64: m.DueAt.UnixMilli(), Valid: true},
		reviewCount:    m.ReviewCount,
		lapseCount:     m.LapseCount,
	}
}

func (c stateCols) state() (fsrs45.ReviewState, error) {
	status, err := fsrs45.ParseStatus(c.status)
	if err != nil {
		return fsrs45.ReviewState{}, err
	}
	if status == fsrs45.Unseen {
		return fsrs45.ReviewState{}, nil
	}
	if !c.stability.Valid || !c.difficulty.Valid || !c.lastReviewedAt.Valid || !c.dueAt.Valid {
		return fsrs45.ReviewState{}, fsrs45.ErrPartialState
	}
	return fsrs45.NewReviewed(fsrs45.Memory{
		Stability:      c.stability.Float64,
		Difficulty:     c.difficulty.Float64,
		LastReviewedAt: time.UnixMilli(c.lastReviewedAt.Int64),
		DueAt:          time.UnixMilli(c.dueAt.Int64),
		ReviewCount:    c.reviewCount,
		LapseCount:     c.lapseCount,
	})
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCard(row scanner) (*Card, error) {
	var (
		c                    Card
		cols                 stateCols
		createdAt, updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Front, &c.Back,
		&cols.status, &cols.stability, &cols.difficulty, &cols.lastReviewedAt, &cols.dueAt,
		&cols.reviewCount, &cols.lapseCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan card: %w", err)
	}
	c.State, err = cols.state()
	if err != nil {
		return nil, fmt.Errorf("store: card %q: %w", c.ID, err)
	}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	c.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &c, nil
}

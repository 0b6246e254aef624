package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45"
)

// MergeStrategy defines how to handle cards that already exist.
type MergeStrategy string

const (
	// MergeStrategySkip keeps existing cards untouched.
	MergeStrategySkip MergeStrategy = "skip"
	// MergeStrategyReplace overwrites existing cards and their review logs (default).
	MergeStrategyReplace MergeStrategy = "replace"
)

// ParseMergeStrategy parses "skip" or "replace". An empty string selects
// MergeStrategyReplace.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch MergeStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MergeStrategyReplace:
		return MergeStrategyReplace, nil
	case MergeStrategySkip:
		return MergeStrategySkip, nil
	}
	return "", fmt.Errorf("store: unknown merge strategy %q", s)
}

// ImportOptions controls ImportJSON.
type ImportOptions struct {
	Strategy MergeStrategy
	DryRun   bool // Validate and count without writing.
}

// ImportResult summarizes an import.
type ImportResult struct {
	Format   string `json:"format"` // "export" or "legacy".
	Total    int    `json:"total"`
	Created  int    `json:"created"`
	Replaced int    `json:"replaced"`
	Skipped  int    `json:"skipped"`
	Logs     int    `json:"logs"`
	DryRun   bool   `json:"dry_run"`
}

const (
	formatExport = "export"
	formatLegacy = "legacy"
)

// importDoc accepts both the ExportFormat document and the legacy browser
// state document {cards: {id: {S, D, last, due, reps, lapses}}, version,
// targetR}.
type importDoc struct {
	Version    string             `json:"version"`
	Model      string             `json:"model"`
	Cards      json.RawMessage    `json:"cards"`
	ReviewLogs []fsrs45.ReviewLog `json:"review_logs"`
	TargetR    *float64           `json:"targetR"`
}

// legacyState is one card of the legacy document. Timestamps are
// fractional-capable Unix milliseconds.
type legacyState struct {
	S      *float64 `json:"S"`
	D      *float64 `json:"D"`
	Last   *float64 `json:"last"`
	Due    *float64 `json:"due"`
	Reps   *int     `json:"reps"`
	Lapses *int     `json:"lapses"`
}

type importCard struct {
	card ExportCard
	logs []fsrs45.ReviewLog
	// keepContent leaves front and back of an existing card unchanged.
	keepContent bool
}

// ImportJSON reads an export (or a legacy browser state document) from r and
// merges it into the store in one transaction. Every state is validated
// first: partial states fail with fsrs45.ErrPartialState, out-of-range values
// with fsrs45.ErrInvalidState and bad log grades with fsrs45.ErrInvalidGrade.
// Nothing is written if any card fails.
func (s *Store) ImportJSON(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	strategy := opts.Strategy
	if strategy == "" {
		strategy = MergeStrategyReplace
	}
	if strategy != MergeStrategySkip && strategy != MergeStrategyReplace {
		return nil, fmt.Errorf("store: unknown merge strategy %q", strategy)
	}

	var doc importDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("store: decode import: %w", err)
	}

	var (
		cards  []importCard
		format string
		err    error
	)
	switch doc.Version {
	case ExportVersion:
		format = formatExport
		cards, err = parseExportCards(doc)
	case fsrs45.ModelVersion:
		format = formatLegacy
		if doc.TargetR != nil && *doc.TargetR != fsrs45.TargetRetention {
			s.log.Warn("legacy target retention ignored",
				zap.Float64("target_r", *doc.TargetR),
				zap.Float64("used", fsrs45.TargetRetention))
		}
		cards, err = parseLegacyCards(doc.Cards)
	case "":
		return nil, fmt.Errorf("%w: missing version field", ErrUnsupportedVersion)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, doc.Version)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	result := &ImportResult{Format: format, Total: len(cards), DryRun: opts.DryRun}
	apply := func(q querier) error {
		for _, ic := range cards {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := s.mergeCard(ctx, q, ic, strategy, opts.DryRun, result); err != nil {
				return err
			}
		}
		return nil
	}

	if opts.DryRun {
		err = apply(s.db)
	} else {
		err = s.inTx(ctx, func(tx *sql.Tx) error { return apply(tx) })
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("imported cards",
		zap.String("format", result.Format),
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("replaced", result.Replaced),
		zap.Int("skipped", result.Skipped),
		zap.Bool("dry_run", result.DryRun))
	return result, nil
}

func (s *Store) mergeCard(ctx context.Context, q querier, ic importCard, strategy MergeStrategy, dryRun bool, result *ImportResult) error {
	existing, err := getCard(ctx, q, ic.card.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	switch {
	case exists && strategy == MergeStrategySkip:
		result.Skipped++
		return nil
	case exists:
		result.Replaced++
	default:
		result.Created++
	}
	result.Logs += len(ic.logs)
	if dryRun {
		return nil
	}

	now := s.now()
	if exists {
		front, back := ic.card.Front, ic.card.Back
		if ic.keepContent {
			front, back = existing.Front, existing.Back
		}
		if _, err := q.ExecContext(ctx, `UPDATE cards SET front = ?, back = ? WHERE id = ?`,
			front, back, ic.card.ID); err != nil {
			return fmt.Errorf("store: update card %q: %w", ic.card.ID, err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM review_logs WHERE card_id = ?`, ic.card.ID); err != nil {
			return fmt.Errorf("store: delete review logs of %q: %w", ic.card.ID, err)
		}
		if err := updateState(ctx, q, ic.card.ID, ic.card.State, now); err != nil {
			return err
		}
	} else {
		c := &Card{
			ID:        ic.card.ID,
			Front:     ic.card.Front,
			Back:      ic.card.Back,
			State:     ic.card.State,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := insertCard(ctx, q, c); err != nil {
			return err
		}
	}

	for _, l := range ic.logs {
		if err := insertLog(ctx, q, l); err != nil {
			return err
		}
	}
	return nil
}

func parseExportCards(doc importDoc) ([]importCard, error) {
	if doc.Model != fsrs45.ModelVersion {
		return nil, fmt.Errorf("%w: model %q", ErrUnsupportedVersion, doc.Model)
	}

	var exported []json.RawMessage
	if len(doc.Cards) > 0 {
		if err := json.Unmarshal(doc.Cards, &exported); err != nil {
			return nil, fmt.Errorf("store: decode cards: %w", err)
		}
	}

	cards := make([]importCard, 0, len(exported))
	index := make(map[string]int, len(exported))
	for i, raw := range exported {
		var ec ExportCard
		if err := json.Unmarshal(raw, &ec); err != nil {
			return nil, fmt.Errorf("store: card %d: %w", i, err)
		}
		if strings.TrimSpace(ec.ID) == "" {
			return nil, fmt.Errorf("%w: card %d has no id", ErrInvalidCard, i)
		}
		if _, dup := index[ec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate card %q", ErrInvalidCard, ec.ID)
		}
		index[ec.ID] = len(cards)
		cards = append(cards, importCard{card: ec})
	}

	for _, l := range doc.ReviewLogs {
		i, ok := index[l.CardID]
		if !ok {
			return nil, fmt.Errorf("%w: review log for unknown card %q", ErrInvalidCard, l.CardID)
		}
		if !l.Grade.IsValid() {
			return nil, fmt.Errorf("%w: %d", fsrs45.ErrInvalidGrade, int(l.Grade))
		}
		cards[i].logs = append(cards[i].logs, l)
	}
	return cards, nil
}

func parseLegacyCards(raw json.RawMessage) ([]importCard, error) {
	var states map[string]legacyState
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &states); err != nil {
			return nil, fmt.Errorf("store: decode legacy cards: %w", err)
		}
	}

	cards := make([]importCard, 0, len(states))
	for id, ls := range states {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: empty card id", ErrInvalidCard)
		}
		st, err := ls.reviewState()
		if err != nil {
			return nil, fmt.Errorf("store: legacy card %q: %w", id, err)
		}
		cards = append(cards, importCard{
			card:        ExportCard{ID: id, State: st},
			keepContent: true,
		})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].card.ID < cards[j].card.ID })
	return cards, nil
}

// reviewState converts a legacy entry. An entry with none of S, D, last and
// due is unseen; one with only some of them is partial.
func (ls legacyState) reviewState() (fsrs45.ReviewState, error) {
	set := 0
	for _, present := range []bool{ls.S != nil, ls.D != nil, ls.Last != nil, ls.Due != nil} {
		if present {
			set++
		}
	}
	switch set {
	case 0:
		if (ls.Reps != nil && *ls.Reps != 0) || (ls.Lapses != nil && *ls.Lapses != 0) {
			return fsrs45.ReviewState{}, fmt.Errorf("%w: counters without memory state", fsrs45.ErrPartialState)
		}
		return fsrs45.ReviewState{}, nil
	case 4:
	default:
		return fsrs45.ReviewState{}, fmt.Errorf("%w: %d of 4 memory fields present", fsrs45.ErrPartialState, set)
	}

	m := fsrs45.Memory{
		Stability:      *ls.S,
		Difficulty:     *ls.D,
		LastReviewedAt: millisToTime(*ls.Last),
		DueAt:          millisToTime(*ls.Due),
	}
	if ls.Reps != nil {
		m.ReviewCount = *ls.Reps
	}
	if ls.Lapses != nil {
		m.LapseCount = *ls.Lapses
	}
	return fsrs45.NewReviewed(m)
}

// millisToTime floors a possibly fractional Unix millisecond value.
func millisToTime(ms float64) time.Time {
	return time.UnixMilli(int64(math.Floor(ms))).UTC()
}

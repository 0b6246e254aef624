package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sky-flux/fsrs45"
)

func TestAddCard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.AddCard(ctx, NewCard{ID: "hund", Front: "der Hund", Back: "the dog"})
	require.NoError(t, err)
	assert.Equal(t, "hund", c.ID)
	assert.True(t, c.State.IsUnseen())
	assert.True(t, c.CreatedAt.Equal(t0))

	got, err := s.GetCard(ctx, "hund")
	require.NoError(t, err)
	assert.Equal(t, c.Front, got.Front)
	assert.Equal(t, c.Back, got.Back)
	assert.True(t, got.CreatedAt.Equal(t0))
}

func TestAddCardGeneratesID(t *testing.T) {
	s := newTestStore(t)
	c, err := s.AddCard(context.Background(), NewCard{Front: "la casa"})
	require.NoError(t, err)
	_, err = uuid.Parse(c.ID)
	assert.NoError(t, err, "generated id %q should be a UUID", c.ID)
}

func TestAddCardDuplicate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.AddCard(ctx, NewCard{ID: "a", Front: "x"})
	require.NoError(t, err)
	_, err = s.AddCard(ctx, NewCard{ID: "a", Front: "y"})
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAddCardRequiresFront(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddCard(context.Background(), NewCard{ID: "a", Front: "   "})
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestGetCardNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetCard(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func seedCards(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c", "d"} {
		_, err := s.AddCard(ctx, NewCard{ID: id, Front: "front " + id})
		require.NoError(t, err)
	}
	// b is due soonest (Again), c later (Good), d latest (Easy); a stays unseen.
	_, err := s.Review(ctx, "b", fsrs45.Again, t0, nil)
	require.NoError(t, err)
	_, err = s.Review(ctx, "c", fsrs45.Good, t0, nil)
	require.NoError(t, err)
	_, err = s.Review(ctx, "d", fsrs45.Easy, t0, nil)
	require.NoError(t, err)
}

func ids(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestListCards(t *testing.T) {
	s := newTestStore(t)
	seedCards(t, s)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all by id", ListFilter{}, []string{"a", "b", "c", "d"}},
		{"unseen", ListFilter{Status: fsrs45.Unseen}, []string{"a"}},
		{"reviewed", ListFilter{Status: fsrs45.Reviewed}, []string{"b", "c", "d"}},
		{"by due, unseen last", ListFilter{OrderBy: "due"}, []string{"b", "c", "d", "a"}},
		{"due within a day", ListFilter{DueBefore: t0.Add(day), OrderBy: "due"}, []string{"b"}},
		{"due within five days", ListFilter{DueBefore: t0.Add(5 * day), OrderBy: "due"}, []string{"b", "c"}},
		{"limit", ListFilter{OrderBy: "due", Limit: 2}, []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListCards(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestListCardsUnknownOrder(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListCards(context.Background(), ListFilter{OrderBy: "random"})
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx, t0)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	seedCards(t, s)
	st, err = s.Stats(ctx, t0.Add(day))
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 4, Unseen: 1, Reviewed: 3, Due: 1}, st)
}

func TestDeleteCard(t *testing.T) {
	s := newTestStore(t)
	seedCards(t, s)
	ctx := context.Background()

	require.NoError(t, s.DeleteCard(ctx, "b"))
	_, err := s.GetCard(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound)

	logs, err := s.AllReviewLogs(ctx)
	require.NoError(t, err)
	for _, l := range logs {
		assert.NotEqual(t, "b", l.CardID, "logs of a deleted card must be removed")
	}
	assert.Len(t, logs, 2)

	assert.ErrorIs(t, s.DeleteCard(ctx, "b"), ErrNotFound)
}

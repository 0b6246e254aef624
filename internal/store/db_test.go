package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sky-flux/fsrs45"
)

// TestMain ensures no goroutines leak from closed databases.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory(context.Background(), nil)
	require.NoError(t, err)
	s.clock = func() time.Time { return t0 }
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenMemory(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, ":memory:", s.Path())

	tables := []string{"cards", "review_logs", "metadata", "goose_db_version"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		assert.NoError(t, err, "table %q", table)
	}
}

func TestModelVersionRecorded(t *testing.T) {
	s := newTestStore(t)
	var v string
	require.NoError(t, s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, metadataKeyModelVersion).Scan(&v))
	assert.Equal(t, fsrs45.ModelVersion, v)
}

func TestForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`INSERT INTO review_logs (id, card_id, grade, reviewed_at) VALUES ('x', 'missing', 3, 0)`)
	assert.Error(t, err)
}

func TestStateCheckConstraint(t *testing.T) {
	s := newTestStore(t)
	_, err := s.db.Exec(`
		INSERT INTO cards (id, status, stability, review_count, created_at, updated_at)
		VALUES ('p', 'reviewed', 1.5, 1, 0, 0)
	`)
	assert.Error(t, err, "reviewed row without difficulty and timestamps must be rejected")

	_, err = s.db.Exec(`
		INSERT INTO cards (id, status, stability, created_at, updated_at)
		VALUES ('q', 'unseen', 1.5, 0, 0)
	`)
	assert.Error(t, err, "unseen row with stability must be rejected")
}

func TestOpenFileReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cards.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.AddCard(ctx, NewCard{ID: "new", Front: "der Hund", Back: "the dog"})
	require.NoError(t, err)
	_, err = s.AddCard(ctx, NewCard{ID: "seen", Front: "die Katze", Back: "the cat"})
	require.NoError(t, err)
	reviewed, err := s.Review(ctx, "seen", fsrs45.Good, t0, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()

	c, err := s.GetCard(ctx, "new")
	require.NoError(t, err)
	assert.True(t, c.State.IsUnseen(), "unseen card must stay unseen after reload")
	assert.Equal(t, "der Hund", c.Front)

	c, err = s.GetCard(ctx, "seen")
	require.NoError(t, err)
	assert.True(t, c.State.Equal(reviewed.State), "reviewed state must survive reload")
}

func TestOpenRejectsOtherModel(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cards.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE metadata SET value = 'fsrs-6' WHERE key = ?`, metadataKeyModelVersion)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(ctx, path, nil)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestClosedStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenMemory(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second Close is a no-op")

	_, err = s.AddCard(ctx, NewCard{Front: "x"})
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.GetCard(ctx, "x")
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.ListCards(ctx, ListFilter{})
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.Review(ctx, "x", fsrs45.Good, t0, nil)
	assert.ErrorIs(t, err, ErrStoreClosed)
	_, err = s.Reset(ctx)
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, s.DeleteCard(ctx, "x"), ErrStoreClosed)
	assert.ErrorIs(t, s.ExportJSON(ctx, nil, ExportOptions{}), ErrStoreClosed)
}

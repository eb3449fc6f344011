package books

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: opens a separate database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// stepClock moves forward a second every time it's read.
type stepClock struct {
	t time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 15, 12, 0, 0, 0, time.UTC)
	}
}

func newTestStore(db *bun.DB) *bunStore {
	return &bunStore{db: db, now: newStepClock().Now}
}

func newTestService(t *testing.T) (*Service, *bun.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(newTestStore(db), NewValidator(fixedClock(2026))), db
}

// fakeStore returns canned errors and records what it was asked to do.
type fakeStore struct {
	insertErr  error
	findAllErr error
	removeErr  error
	removed    *models.Book

	inserts int
}

func (s *fakeStore) Insert(_ context.Context, book *models.Book) error {
	s.inserts++
	if s.insertErr != nil {
		return s.insertErr
	}
	book.ID = "fake-id"
	return nil
}

func (s *fakeStore) FindAll(_ context.Context, _ SortOrder) ([]*models.Book, error) {
	return nil, s.findAllErr
}

func (s *fakeStore) FindByIDAndRemove(_ context.Context, _ string) (*models.Book, error) {
	return s.removed, s.removeErr
}

func (s *fakeStore) RemoveAll(_ context.Context) (int64, error) {
	return 0, s.removeErr
}

func dunePayload() CreateBookPayload {
	return CreateBookPayload{
		Title:  "Dune",
		Author: "Herbert",
		ISBN:   "9780441013593",
		Year:   "1965",
	}
}

package books

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/database"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileService opens a file database through database.New so requests get
// their own connections, the way the server runs.
func newFileService(t *testing.T) *Service {
	t.Helper()

	cfg := config.NewForTest()
	cfg.DatabaseFilePath = filepath.Join(t.TempDir(), "catalog.db")

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	return NewService(NewStore(db), NewValidator(fixedClock(2026)))
}

// outcome collapses a service error to its code, or "ok".
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var e *errcodes.Error
	if errors.As(err, &e) {
		return e.Code
	}
	return err.Error()
}

func runConcurrently(n int, fn func() error) map[string]int {
	var mu sync.Mutex
	var wg sync.WaitGroup
	results := map[string]int{}

	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res := outcome(fn())
			mu.Lock()
			results[res]++
			mu.Unlock()
		}()
	}
	close(start)
	wg.Wait()
	return results
}

func TestService_ConcurrentCreateSameIsbn(t *testing.T) {
	t.Parallel()
	svc := newFileService(t)
	ctx := context.Background()

	const workers = 20
	results := runConcurrently(workers, func() error {
		_, err := svc.Create(ctx, dunePayload())
		return err
	})

	assert.Equal(t, map[string]int{"ok": 1, errcodes.CodeDuplicateIsbn: workers - 1}, results)

	books, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestService_ConcurrentDeleteSameID(t *testing.T) {
	t.Parallel()
	svc := newFileService(t)
	ctx := context.Background()

	book, err := svc.Create(ctx, dunePayload())
	require.NoError(t, err)

	const workers = 10
	results := runConcurrently(workers, func() error {
		_, err := svc.Delete(ctx, book.ID)
		return err
	})

	assert.Equal(t, map[string]int{"ok": 1, errcodes.CodeNotFound: workers - 1}, results)

	books, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

package books

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/uptrace/bun"
)

type SortOrder int

const (
	CreatedAtDesc SortOrder = iota
	CreatedAtAsc
)

// Store persists books. Insert reports a taken ISBN as *DuplicateKeyError and
// a record that fails its own checks as *models.ValidationError.
// FindByIDAndRemove returns nil, nil when nothing matched the id.
type Store interface {
	Insert(ctx context.Context, book *models.Book) error
	FindAll(ctx context.Context, order SortOrder) ([]*models.Book, error)
	FindByIDAndRemove(ctx context.Context, id string) (*models.Book, error)
	RemoveAll(ctx context.Context) (int64, error)
}

// DuplicateKeyError is returned when an insert collides with a unique key.
type DuplicateKeyError struct {
	Field string
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %s %q already exists", e.Field, e.Value)
}

type bunStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewStore(db *bun.DB) Store {
	return &bunStore{db: db, now: time.Now}
}

func (s *bunStore) Insert(ctx context.Context, book *models.Book) error {
	now := s.now().UTC()
	book.ID = uuid.New().String()
	book.CreatedAt = now
	book.UpdatedAt = now

	result, err := s.db.
		NewInsert().
		Model(book).
		On("CONFLICT (isbn) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return &DuplicateKeyError{Field: "isbn", Value: book.ISBN}
	}
	return nil
}

func (s *bunStore) FindAll(ctx context.Context, order SortOrder) ([]*models.Book, error) {
	books := []*models.Book{}

	q := s.db.
		NewSelect().
		Model(&books)

	switch order {
	case CreatedAtAsc:
		q = q.OrderExpr("b.created_at ASC, b.rowid ASC")
	default:
		q = q.OrderExpr("b.created_at DESC, b.rowid DESC")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, errors.WithStack(err)
	}
	return books, nil
}

func (s *bunStore) FindByIDAndRemove(ctx context.Context, id string) (*models.Book, error) {
	book := &models.Book{}

	// A single DELETE ... RETURNING takes the write lock up front, so
	// concurrent removers of the same id serialize and all but one match
	// nothing.
	err := s.db.
		NewDelete().
		Model(book).
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return book, nil
}

// RemoveAll deletes every book and returns how many were removed.
func (s *bunStore) RemoveAll(ctx context.Context) (int64, error) {
	result, err := s.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, err := result.RowsAffected()
	return n, errors.WithStack(err)
}

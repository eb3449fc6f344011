package books

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
)

type Service struct {
	store     Store
	validator *Validator
}

func NewService(store Store, validator *Validator) *Service {
	return &Service{store, validator}
}

// List returns every book, newest first.
func (svc *Service) List(ctx context.Context) ([]*models.Book, error) {
	books, err := svc.store.FindAll(ctx, CreatedAtDesc)
	if err != nil {
		return nil, errcodes.PersistenceFailed("Failed to fetch books", err)
	}
	if books == nil {
		books = []*models.Book{}
	}
	return books, nil
}

// Create validates the payload and persists it. Validation failures are
// returned as-is and never reach the store.
func (svc *Service) Create(ctx context.Context, payload CreateBookPayload) (*models.Book, error) {
	nb, err := svc.validator.Validate(ctx, payload)
	if err != nil {
		return nil, err
	}

	book := &models.Book{
		Title:  nb.Title,
		Author: nb.Author,
		ISBN:   nb.ISBN,
		Year:   nb.Year,
	}
	if err := svc.store.Insert(ctx, book); err != nil {
		return nil, classifyInsertError(err)
	}

	logger.FromContext(ctx).Info("book created", logger.Data{"book_id": book.ID, "isbn": book.ISBN})
	return book, nil
}

// classifyInsertError maps store failures to coded errors. Persistence
// failures are logged once by the server's error handler.
func classifyInsertError(err error) error {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return errcodes.DuplicateIsbn(dup.Value)
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return errcodes.ValidationRejected(verr.Message, err)
	}

	return errcodes.PersistenceFailed("Failed to add book", err)
}

// Delete removes the book with the given id and returns what was removed.
func (svc *Service) Delete(ctx context.Context, id string) (*models.Book, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errcodes.NotFound("Book")
	}

	book, err := svc.store.FindByIDAndRemove(ctx, id)
	if err != nil {
		return nil, errcodes.PersistenceFailed("Failed to delete book", err)
	}
	if book == nil {
		return nil, errcodes.NotFound("Book")
	}

	logger.FromContext(ctx).Info("book deleted", logger.Data{"book_id": book.ID})
	return book, nil
}

// DeleteAll empties the catalog.
func (svc *Service) DeleteAll(ctx context.Context) (int64, error) {
	n, err := svc.store.RemoveAll(ctx)
	if err != nil {
		return 0, errcodes.PersistenceFailed("Failed to delete books", err)
	}
	return n, nil
}

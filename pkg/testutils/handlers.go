package testutils

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	bookService *books.Service
}

// seedBooksRequest is the request body for seeding test books.
type seedBooksRequest struct {
	Books []books.CreateBookPayload `json:"books" validate:"required,min=1,dive"`
}

// seedBooks creates the given books in order, so the last one is the newest.
// POST /test/books.
func (h *handler) seedBooks(c echo.Context) error {
	ctx := c.Request().Context()

	var req seedBooksRequest
	if err := c.Bind(&req); err != nil {
		return errors.WithStack(err)
	}

	created := make([]*models.Book, 0, len(req.Books))
	for _, payload := range req.Books {
		book, err := h.bookService.Create(ctx, payload)
		if err != nil {
			return errors.WithStack(err)
		}
		created = append(created, book)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, created))
}

// deleteAllBooksResponse is the response body for deleting all books.
type deleteAllBooksResponse struct {
	Deleted int64 `json:"deleted"`
}

// deleteAllBooks deletes all books from the database.
// DELETE /test/books.
func (h *handler) deleteAllBooks(c echo.Context) error {
	ctx := c.Request().Context()

	deleted, err := h.bookService.DeleteAll(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, deleteAllBooksResponse{
		Deleted: deleted,
	}))
}

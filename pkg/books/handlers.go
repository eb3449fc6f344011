package books

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
)

type handler struct {
	bookService *Service
}

type DeleteBookResponse struct {
	Message string       `json:"message"`
	Book    *models.Book `json:"book"`
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	books, err := h.bookService.List(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, books))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	// Missing fields are reported by the service, so an empty body and extra
	// keys are let through the binder.
	c.Set(binder.ContextKeyAllowUnknownFields, true)
	c.Set(binder.ContextKeyAllowEmptyBody, true)

	params := CreateBookPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(asBadRequest(err))
	}

	book, err := h.bookService.Create(ctx, params)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, book))
}

// asBadRequest reports a client error from binding a create body with a 400
// status, keeping its code and message.
func asBadRequest(err error) error {
	var e *errcodes.Error
	if !errors.As(err, &e) || e.HTTPCode == http.StatusBadRequest || e.HTTPCode >= http.StatusInternalServerError {
		return err
	}
	bad := *e
	bad.HTTPCode = http.StatusBadRequest
	return &bad
}

func (h *handler) delete(c echo.Context) error {
	ctx := c.Request().Context()

	params := DeleteBookParams{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	book, err := h.bookService.Delete(ctx, params.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, DeleteBookResponse{
		Message: "Book deleted successfully",
		Book:    book,
	}))
}

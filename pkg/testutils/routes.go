// Package testutils provides test-only API endpoints.
// These routes are only registered when ENVIRONMENT=test.
package testutils

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers test-only routes.
// These endpoints should ONLY be registered in test environments.
func RegisterRoutes(e *echo.Echo, db *bun.DB) {
	h := &handler{
		bookService: books.NewService(books.NewStore(db), books.NewValidator(time.Now)),
	}

	test := e.Group("/test")
	test.POST("/books", h.seedBooks)
	test.DELETE("/books", h.deleteAllBooks)
}

package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	MinBookYear = 1000
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID        string    `bun:",pk" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Title     string    `bun:",notnull" json:"title"`
	Author    string    `bun:",notnull" json:"author"`
	ISBN      string    `bun:"isbn,notnull" json:"isbn"`
	Year      int       `bun:",notnull" json:"year"`
}

var _ bun.BeforeAppendModelHook = (*Book)(nil)

// BeforeAppendModel re-checks the record before it's written so that nothing
// bypassing the service layer can persist an invalid book.
func (b *Book) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		return b.Validate(time.Now())
	}
	return nil
}

// Validate checks the persisted-record invariants of a book relative to now.
func (b *Book) Validate(now time.Time) error {
	switch {
	case strings.TrimSpace(b.Title) == "":
		return &ValidationError{Field: "title", Message: "Book title is required"}
	case strings.TrimSpace(b.Author) == "":
		return &ValidationError{Field: "author", Message: "Author name is required"}
	case strings.TrimSpace(b.ISBN) == "":
		return &ValidationError{Field: "isbn", Message: "ISBN number is required"}
	case b.Year == 0:
		return &ValidationError{Field: "year", Message: "Publication year is required"}
	case b.Year < MinBookYear:
		return &ValidationError{Field: "year", Message: "Year must be valid"}
	case b.Year > now.UTC().Year():
		return &ValidationError{Field: "year", Message: "Year cannot be in the future"}
	}
	return nil
}

// ValidationError is returned by the store when a record fails its own
// validation on write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("book validation failed: %s: %s", e.Field, e.Message)
}

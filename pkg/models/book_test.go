package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	valid := Book{Title: "Dune", Author: "Herbert", ISBN: "9780441013593", Year: 1965}

	tests := []struct {
		name    string
		mutate  func(b *Book)
		field   string
		message string
	}{
		{"valid", func(_ *Book) {}, "", ""},
		{"blank title", func(b *Book) { b.Title = "  " }, "title", "Book title is required"},
		{"missing author", func(b *Book) { b.Author = "" }, "author", "Author name is required"},
		{"missing isbn", func(b *Book) { b.ISBN = "" }, "isbn", "ISBN number is required"},
		{"missing year", func(b *Book) { b.Year = 0 }, "year", "Publication year is required"},
		{"year too old", func(b *Book) { b.Year = 999 }, "year", "Year must be valid"},
		{"lower bound", func(b *Book) { b.Year = 1000 }, "", ""},
		{"current year", func(b *Book) { b.Year = 2026 }, "", ""},
		{"future year", func(b *Book) { b.Year = 2027 }, "year", "Year cannot be in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mutate(&b)
			err := b.Validate(now)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.message, verr.Message)
			assert.Contains(t, err.Error(), "book validation failed")
		})
	}
}

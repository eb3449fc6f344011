package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/client"
	"github.com/shishobooks/catalog/pkg/models"
)

var errMissingFields = errors.New("Please fill in all fields")

// ValidateForm runs the same checks as the server before a create request is
// sent, so obvious mistakes don't need a round trip.
func ValidateForm(title, author, isbn, year string, now time.Time) (client.NewBook, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	isbn = strings.TrimSpace(isbn)
	year = strings.TrimSpace(year)

	if title == "" || author == "" || isbn == "" || year == "" {
		return client.NewBook{}, errMissingFields
	}

	currentYear := now.UTC().Year()
	n, err := strconv.Atoi(year)
	if err != nil || n < models.MinBookYear || n > currentYear {
		return client.NewBook{}, errors.Errorf("Please enter a valid year between %d and %d", models.MinBookYear, currentYear)
	}

	return client.NewBook{Title: title, Author: author, ISBN: isbn, Year: n}, nil
}

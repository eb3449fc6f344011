package books

import (
	"context"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/mold/v4"
	"github.com/go-playground/mold/v4/modifiers"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
)

// NewBook is a create payload that passed validation.
type NewBook struct {
	Title  string
	Author string
	ISBN   string
	Year   int
}

// Validator checks create payloads before anything is written. The upper
// bound for the year is the current year according to its clock.
type Validator struct {
	conform  *mold.Transformer
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{
		conform:  modifiers.New(),
		validate: validator.New(),
		now:      now,
	}
	v.validate.SetTagName("book")
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	// RegisterValidation only fails for an empty tag or a nil func.
	_ = v.validate.RegisterValidation("year", v.yearInRange)
	return v
}

func (v *Validator) currentYear() int {
	return v.now().UTC().Year()
}

// parseYear accepts only plain digits without a sign or leading zeros.
func parseYear(s string) (int, bool) {
	if s == "" || s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	year, err := strconv.Atoi(s)
	return year, err == nil
}

func (v *Validator) yearInRange(fl validator.FieldLevel) bool {
	year, ok := parseYear(fl.Field().String())
	return ok && year >= models.MinBookYear && year <= v.currentYear()
}

// Validate trims the payload and checks it. A missing field is reported before
// a bad year.
func (v *Validator) Validate(ctx context.Context, payload CreateBookPayload) (*NewBook, error) {
	if err := v.conform.Struct(ctx, &payload); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := v.validate.Struct(payload); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return nil, errors.WithStack(err)
		}
		for _, fe := range errs {
			if fe.Tag() == "required" {
				return nil, errcodes.MissingField(fe.Field())
			}
		}
		return nil, errcodes.InvalidYear(models.MinBookYear, v.currentYear())
	}

	year, ok := parseYear(string(payload.Year))
	if !ok {
		return nil, errcodes.InvalidYear(models.MinBookYear, v.currentYear())
	}

	return &NewBook{
		Title:  string(payload.Title),
		Author: string(payload.Author),
		ISBN:   string(payload.ISBN),
		Year:   year,
	}, nil
}

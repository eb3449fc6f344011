package binder

import (
	"encoding/json"
	"reflect"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/gorilla/schema"
	"github.com/stretchr/testify/assert"
)

// fieldError is a validator.FieldError with only the parts the formatter reads.
type fieldError struct {
	tag   string
	field string
	param string
	kind  reflect.Kind
}

func (e fieldError) Error() string                  { return e.tag }
func (e fieldError) Tag() string                    { return e.tag }
func (e fieldError) ActualTag() string              { return e.tag }
func (e fieldError) Namespace() string              { return e.field }
func (e fieldError) StructNamespace() string        { return e.field }
func (e fieldError) Field() string                  { return e.field }
func (e fieldError) StructField() string            { return e.field }
func (e fieldError) Value() interface{}             { return nil }
func (e fieldError) Param() string                  { return e.param }
func (e fieldError) Kind() reflect.Kind             { return e.kind }
func (e fieldError) Type() reflect.Type             { return nil }
func (e fieldError) Translate(ut.Translator) string { return "" }

func TestFormatValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  fieldError
		want string
	}{
		{"required", fieldError{required, "title", "", reflect.String}, `"title" is required`},
		{"string max", fieldError{mx, "title", "200", reflect.String}, `"title" length must be less than or equal to 200 characters`},
		{"string min of one", fieldError{mn, "isbn", "1", reflect.String}, `"isbn" length must be greater than or equal to 1 character`},
		{"numeric max", fieldError{mx, "year", "2026", reflect.Int}, `"year" must be less than or equal to 2026`},
		{"numeric min", fieldError{mn, "year", "1000", reflect.Int64}, `"year" must be greater than or equal to 1000`},
		{"slice min", fieldError{mn, "books", "1", reflect.Slice}, `"books" length must be greater than or equal to 1 element`},
		{"slice max", fieldError{mx, "books", "50", reflect.Slice}, `"books" length must be less than or equal to 50 elements`},
		{"gt", fieldError{gt, "year", "999", reflect.Int}, `"year" must be greater than 999`},
		{"gte", fieldError{gte, "year", "1000", reflect.Int}, `"year" must be greater than or equal to 1000`},
		{"ne", fieldError{ne, "author", "unknown", reflect.String}, `"author" can't be "unknown"`},
		{"oneof", fieldError{oneof, "order", "asc desc", reflect.String}, `"order" must be one of the following: "asc", "desc"`},
		{"unknown tag", fieldError{"isbn13", "isbn", "", reflect.String}, `"isbn" failed the "isbn13" check`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValidationError(tt.err))
		})
	}
}

func TestFormatTypeErrors(t *testing.T) {
	t.Parallel()

	var payload struct {
		Year int `json:"year"`
	}
	err := json.Unmarshal([]byte(`{"year":{}}`), &payload)
	var typeErr *json.UnmarshalTypeError
	if assert.ErrorAs(t, err, &typeErr) {
		assert.Equal(t, `"year" should be of type int`, formatUnmarshalTypeError(typeErr))
	}

	convErr := schema.ConversionError{Key: "year", Type: reflect.TypeOf(0)}
	assert.Equal(t, `"year" should be of type int`, formatSchemaConversionError(convErr))
}

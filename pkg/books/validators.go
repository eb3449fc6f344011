package books

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// YearInput holds the raw year of a create request. Clients send it either as
// a JSON number or as a string, so it's kept as text until the Validator
// parses it.
type YearInput string

func (y *YearInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*y = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithStack(err)
		}
		*y = YearInput(s)
	default:
		*y = YearInput(data)
	}
	return nil
}

func (y *YearInput) UnmarshalText(text []byte) error {
	*y = YearInput(text)
	return nil
}

// TextInput is a text field of a create request. Numbers and booleans are
// taken as their literal text; objects and arrays are rejected.
type TextInput string

func (t *TextInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.WithStack(err)
		}
		*t = TextInput(s)
	case len(data) > 0 && (data[0] == '{' || data[0] == '['):
		return errors.New("text field can't be an object or an array")
	default:
		*t = TextInput(data)
	}
	return nil
}

func (t *TextInput) UnmarshalText(text []byte) error {
	*t = TextInput(text)
	return nil
}

type CreateBookPayload struct {
	Title  TextInput `json:"title" form:"title" mod:"trim" book:"required"`
	Author TextInput `json:"author" form:"author" mod:"trim" book:"required"`
	ISBN   TextInput `json:"isbn" form:"isbn" mod:"trim" book:"required"`
	Year   YearInput `json:"year" form:"year" mod:"trim" book:"required,year"`
}

// UnmarshalJSON leaves the payload empty for bodies that aren't a JSON
// object, so they fail validation as missing fields.
func (p *CreateBookPayload) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*p = CreateBookPayload{}
		return nil
	}
	type fields CreateBookPayload
	return errors.WithStack(json.Unmarshal(data, (*fields)(p)))
}

type DeleteBookParams struct {
	ID string `param:"id" json:"id" mod:"trim"`
}

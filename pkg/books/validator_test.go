package books

import (
	"context"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()
	v := NewValidator(fixedClock(2026))
	ctx := context.Background()

	t.Run("trims text and coerces the year", func(t *testing.T) {
		nb, err := v.Validate(ctx, CreateBookPayload{
			Title:  "  Dune ",
			Author: "\tHerbert",
			ISBN:   " 9780441013593 ",
			Year:   " 1965 ",
		})
		require.NoError(t, err)
		assert.Equal(t, &NewBook{Title: "Dune", Author: "Herbert", ISBN: "9780441013593", Year: 1965}, nb)
	})

	t.Run("accepts both ends of the year range", func(t *testing.T) {
		for _, year := range []YearInput{"1000", "2026"} {
			p := dunePayload()
			p.Year = year
			_, err := v.Validate(ctx, p)
			assert.NoError(t, err, string(year))
		}
	})

	missing := []struct {
		name   string
		field  string
		mutate func(p *CreateBookPayload)
	}{
		{"empty title", "title", func(p *CreateBookPayload) { p.Title = "" }},
		{"blank title", "title", func(p *CreateBookPayload) { p.Title = "   " }},
		{"empty author", "author", func(p *CreateBookPayload) { p.Author = "" }},
		{"empty isbn", "isbn", func(p *CreateBookPayload) { p.ISBN = "" }},
		{"empty year", "year", func(p *CreateBookPayload) { p.Year = "" }},
		{"blank year", "year", func(p *CreateBookPayload) { p.Year = " " }},
		{"missing field wins over a bad year", "author", func(p *CreateBookPayload) {
			p.Author = ""
			p.Year = "abc"
		}},
	}
	for _, tc := range missing {
		t.Run(tc.name, func(t *testing.T) {
			p := dunePayload()
			tc.mutate(&p)
			_, err := v.Validate(ctx, p)
			require.Error(t, err)

			var e *errcodes.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, errcodes.CodeMissingField, e.Code)
			assert.Equal(t, tc.field, e.Extra["field"])
			assert.Equal(t, "All fields are required (title, author, isbn, year)", e.Message)
		})
	}

	for _, year := range []YearInput{"999", "2027", "abc", "19a5", "1965.5", "-1965", "+1965", "01965", "0"} {
		t.Run("rejects year "+string(year), func(t *testing.T) {
			p := dunePayload()
			p.Year = year
			_, err := v.Validate(ctx, p)
			require.Error(t, err)
			assert.True(t, errcodes.HasCode(err, errcodes.CodeInvalidYear))
			assert.Contains(t, err.Error(), "between 1000 and 2026")
		})
	}

	t.Run("upper bound follows the clock", func(t *testing.T) {
		later := NewValidator(fixedClock(2030))
		p := dunePayload()
		p.Year = "2029"
		_, err := later.Validate(ctx, p)
		require.NoError(t, err)
		_, err = v.Validate(ctx, p)
		assert.True(t, errcodes.HasCode(err, errcodes.CodeInvalidYear))
	})

	t.Run("does not modify the caller's payload", func(t *testing.T) {
		p := dunePayload()
		p.Title = " Dune "
		_, err := v.Validate(ctx, p)
		require.NoError(t, err)
		assert.EqualValues(t, " Dune ", p.Title)
	})
}

func TestYearInput_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body     string
		expected YearInput
	}{
		{`{"year":1965}`, "1965"},
		{`{"year":"1965"}`, "1965"},
		{`{"year":" 1965 "}`, " 1965 "},
		{`{"year":null}`, ""},
		{`{}`, ""},
		{`{"year":true}`, "true"},
	}
	for _, tc := range cases {
		p := CreateBookPayload{}
		err := json.Unmarshal([]byte(tc.body), &p)
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.expected, p.Year, tc.body)
	}
}

func TestYearInput_UnmarshalText(t *testing.T) {
	t.Parallel()
	var y YearInput
	require.NoError(t, y.UnmarshalText([]byte("1965")))
	assert.Equal(t, YearInput("1965"), y)
}

func TestTextInput_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body     string
		expected TextInput
	}{
		{`{"title":"Dune"}`, "Dune"},
		{`{"title":123}`, "123"},
		{`{"title":true}`, "true"},
		{`{"title":null}`, ""},
	}
	for _, tc := range cases {
		p := CreateBookPayload{}
		err := json.Unmarshal([]byte(tc.body), &p)
		require.NoError(t, err, tc.body)
		assert.Equal(t, tc.expected, p.Title, tc.body)
	}

	p := CreateBookPayload{}
	assert.Error(t, json.Unmarshal([]byte(`{"title":{"a":1}}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"title":["Dune"]}`), &p))
}

func TestCreateBookPayload_NonObjectBody(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[1,2]`, `"Dune"`, `42`} {
		p := CreateBookPayload{Title: "stale"}
		require.NoError(t, json.Unmarshal([]byte(body), &p), body)
		assert.Equal(t, CreateBookPayload{}, p, body)
	}
}

package errcodes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, h *Handler, err error) (int, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Handle(err, e.NewContext(req, rec))

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body["error"]
}

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("custom errors carry their code and extra fields", func(t *testing.T) {
		t.Parallel()

		status, body := handle(t, NewHandler(false), errors.WithStack(DuplicateIsbn("123")))
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeDuplicateIsbn, body["code"])
		assert.Equal(t, "A book with this ISBN (123) already exists", body["message"])
		assert.Equal(t, "123", body["isbn"])
		assert.EqualValues(t, http.StatusBadRequest, body["status_code"])
	})

	t.Run("extra fields never overwrite the envelope", func(t *testing.T) {
		t.Parallel()

		err := &Error{
			HTTPCode: http.StatusBadRequest,
			Message:  "real message",
			Code:     "real_code",
			Extra:    map[string]interface{}{"code": "fake", "field": "title"},
		}
		_, body := handle(t, NewHandler(false), err)
		assert.Equal(t, "real_code", body["code"])
		assert.Equal(t, "title", body["field"])
	})

	t.Run("detail is hidden unless exposed", func(t *testing.T) {
		t.Parallel()

		err := PersistenceFailed("Failed to add book", errors.New("disk I/O error"))

		status, body := handle(t, NewHandler(false), err)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodePersistenceFailed, body["code"])
		assert.Equal(t, "Failed to add book", body["message"])
		assert.NotContains(t, body, "detail")

		_, body = handle(t, NewHandler(true), err)
		assert.Equal(t, "disk I/O error", body["detail"])
	})

	t.Run("unknown errors become internal server errors", func(t *testing.T) {
		t.Parallel()

		status, body := handle(t, NewHandler(false), errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "internal_server_error", body["code"])
		assert.Equal(t, "Internal Server Error", body["message"])
		assert.NotContains(t, body, "detail")

		_, body = handle(t, NewHandler(true), errors.New("boom"))
		assert.Equal(t, "boom", body["detail"])
	})

	t.Run("echo errors are converted", func(t *testing.T) {
		t.Parallel()

		status, body := handle(t, NewHandler(false), echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
		assert.Equal(t, http.StatusMethodNotAllowed, status)
		assert.Equal(t, "method_not_allowed", body["code"])
		assert.Equal(t, "Method Not Allowed", body["message"])
	})
}

func TestHandle_Committed(t *testing.T) {
	t.Parallel()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, c.String(http.StatusOK, "done"))

	NewHandler(false).Handle(errors.New("late"), c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", rec.Body.String())
}

func TestError(t *testing.T) {
	t.Parallel()

	cause := errors.New("constraint failed")
	err := ValidationRejected("Year must be valid", cause)

	assert.Equal(t, "Year must be valid: constraint failed", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, HasCode(errors.WithStack(err), CodeValidationRejected))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(cause, CodeValidationRejected))

	assert.True(t, errors.Is(NotFound("Book"), NotFound("Book")))
	assert.False(t, errors.Is(NotFound("Book"), NotFound("Author")))

	var e *Error
	require.True(t, errors.As(MissingField("title"), &e))
	assert.Equal(t, "title", e.Extra["field"])
	assert.Equal(t, "All fields are required (title, author, isbn, year)", e.Message)
}

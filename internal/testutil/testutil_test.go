package testutil

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequest(t *testing.T) {
	t.Run("no body", func(t *testing.T) {
		r := NewRequest(http.MethodGet, "/books/1", nil)
		assert.Empty(t, r.Header.Get("Content-Type"))
	})

	t.Run("raw string", func(t *testing.T) {
		r := NewRequest(http.MethodPost, "/books", `{"author":`)
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"author":`, string(b))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	})

	t.Run("encoded value", func(t *testing.T) {
		r := NewRequest(http.MethodPost, "/books", map[string]any{"year": 1949})
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"year":1949}`, string(b))
	})
}

func TestRecordHTTPResponse(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Book not found"}`))
	})

	rec := RecordHTTPResponse(Serve(h, NewRequest(http.MethodGet, "/books/9", nil)))

	AssertResponseCode(t, rec.Code, http.StatusNotFound)
	AssertResponseBody(t, rec.Body, "detail", "Book not found")
	assert.Equal(t, "application/json", rec.Header.Get("Content-Type"))
}

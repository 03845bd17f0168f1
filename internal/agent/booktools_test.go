package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookcatalog/internal/book"
	"bookcatalog/internal/client"
	"bookcatalog/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBookAPI struct {
	byName   map[string]book.Book
	byAuthor []book.Book
	err      error
	created  []book.Input
}

func (f *fakeBookAPI) GetByName(_ context.Context, name string) (book.Book, error) {
	if f.err != nil {
		return book.Book{}, f.err
	}
	b, ok := f.byName[name]
	if !ok {
		return book.Book{}, &client.StatusError{Code: http.StatusNotFound, Detail: "Book not found"}
	}
	return b, nil
}

func (f *fakeBookAPI) Create(_ context.Context, in book.Input) (book.Book, error) {
	if f.err != nil {
		return book.Book{}, f.err
	}
	f.created = append(f.created, in)
	return book.Book{ID: len(f.created), Author: in.Author, Name: in.Name, Year: in.Year}, nil
}

func (f *fakeBookAPI) ListByAuthor(_ context.Context, _ string) ([]book.Book, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byAuthor, nil
}

func agentRegistry(t *testing.T, api BookAPI) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	require.NoError(t, r.Register(BookTools(api)...))
	return r
}

func run(t *testing.T, r *tools.Registry, name, args string) string {
	t.Helper()
	out, err := r.Execute(context.Background(), name, json.RawMessage(args))
	require.NoError(t, err)
	return out
}

func TestGetBookByName(t *testing.T) {
	api := &fakeBookAPI{byName: map[string]book.Book{
		"1984": {ID: 1, Author: "George Orwell", Name: "1984", Year: 1949},
	}}
	r := agentRegistry(t, api)

	assert.Equal(t, "Book found: 1984 by George Orwell (1949)", run(t, r, "get_book_by_name", `{"name":"1984"}`))
	assert.Equal(t, "Book not found", run(t, r, "get_book_by_name", `{"name":"Dune"}`))

	_, err := r.Execute(context.Background(), "get_book_by_name", json.RawMessage(`{}`))
	assert.Error(t, err)
}

func TestCreateBook(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		api := &fakeBookAPI{}
		r := agentRegistry(t, api)

		out := run(t, r, "create_book", `{"author":"Frank Herbert","name":"Dune","year":1965}`)

		assert.Equal(t, "Book created: Dune by Frank Herbert (1965)", out)
		assert.Equal(t, []book.Input{{Author: "Frank Herbert", Name: "Dune", Year: 1965}}, api.created)
	})

	t.Run("rejected", func(t *testing.T) {
		api := &fakeBookAPI{err: &client.StatusError{Code: http.StatusUnprocessableEntity}}

		out := run(t, agentRegistry(t, api), "create_book", `{"author":" ","name":"Dune","year":1965}`)

		assert.Equal(t, "Failed to create book", out)
	})

	t.Run("unreachable", func(t *testing.T) {
		api := &fakeBookAPI{err: errors.New("dial tcp: connection refused")}

		out := run(t, agentRegistry(t, api), "create_book", `{"author":"a","name":"b","year":1}`)

		assert.Equal(t, "Error accessing API: dial tcp: connection refused", out)
	})
}

func TestSearchBooksByAuthor(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		api := &fakeBookAPI{byAuthor: []book.Book{
			{ID: 1, Author: "J.R.R. Tolkien", Name: "The Hobbit", Year: 1937},
			{ID: 2, Author: "J.R.R. Tolkien", Name: "The Silmarillion", Year: 1977},
		}}

		out := run(t, agentRegistry(t, api), "search_books_by_author", `{"author":"Tolkien"}`)

		assert.Equal(t, "Found 2 book(s) by author 'Tolkien':\n- The Hobbit (1937)\n- The Silmarillion (1977)", out)
	})

	t.Run("none", func(t *testing.T) {
		out := run(t, agentRegistry(t, &fakeBookAPI{}), "search_books_by_author", `{"author":"Nobody"}`)

		assert.Equal(t, "No books found by author 'Nobody'", out)
	})

	t.Run("api error", func(t *testing.T) {
		api := &fakeBookAPI{err: &client.StatusError{Code: http.StatusInternalServerError}}

		out := run(t, agentRegistry(t, api), "search_books_by_author", `{"author":"x"}`)

		assert.Equal(t, "Error searching books", out)
	})
}

func TestBookTools_AgainstHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/author/Ursula K. Le Guin", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":4,"author":"Ursula K. Le Guin","name":"A Wizard of Earthsea","year":1968}]`))
	}))
	defer srv.Close()

	r := agentRegistry(t, client.New(srv.URL))

	out := run(t, r, "search_books_by_author", `{"author":"Ursula K. Le Guin"}`)

	assert.Equal(t, "Found 1 book(s) by author 'Ursula K. Le Guin':\n- A Wizard of Earthsea (1968)", out)
}

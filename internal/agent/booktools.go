package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bookcatalog/internal/book"
	"bookcatalog/internal/client"
	"bookcatalog/internal/tools"
)

// BookAPI is the part of the catalog client the agent's tools use.
type BookAPI interface {
	GetByName(ctx context.Context, name string) (book.Book, error)
	Create(ctx context.Context, in book.Input) (book.Book, error)
	ListByAuthor(ctx context.Context, author string) ([]book.Book, error)
}

var _ BookAPI = (*client.Client)(nil)

// BookTools returns the text-producing tools the agent offers the model.
func BookTools(api BookAPI) []tools.Tool {
	return []tools.Tool{
		&tools.Func{
			ToolName:        "get_book_by_name",
			ToolDescription: "Get a book by its name from the local book API.",
			ToolSchema:      json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"}},"required":["name"]}`),
			ToolAnnotations: tools.Annotations{ReadOnly: true, Idempotent: true},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var a struct {
					Name *string `json:"name"`
				}
				if err := json.Unmarshal(args, &a); err != nil || a.Name == nil {
					return "", errors.New("invalid arguments: name is required")
				}
				return getBookByName(ctx, api, *a.Name), nil
			},
		},
		&tools.Func{
			ToolName:        "create_book",
			ToolDescription: "Create a new book in the local book API.",
			ToolSchema:      json.RawMessage(`{"type":"object","properties":{"author":{"type":"string"},"name":{"type":"string"},"year":{"type":"integer"}},"required":["author","name","year"]}`),
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var a struct {
					Author *string `json:"author"`
					Name   *string `json:"name"`
					Year   *int    `json:"year"`
				}
				if err := json.Unmarshal(args, &a); err != nil || a.Author == nil || a.Name == nil || a.Year == nil {
					return "", errors.New("invalid arguments: author, name and year are required")
				}
				return createBook(ctx, api, book.Input{Author: *a.Author, Name: *a.Name, Year: *a.Year}), nil
			},
		},
		&tools.Func{
			ToolName:        "search_books_by_author",
			ToolDescription: "Search for books by author from the local book API.",
			ToolSchema:      json.RawMessage(`{"type":"object","properties":{"author":{"type":"string"}},"required":["author"]}`),
			ToolAnnotations: tools.Annotations{ReadOnly: true, Idempotent: true},
			Run: func(ctx context.Context, args json.RawMessage) (string, error) {
				var a struct {
					Author *string `json:"author"`
				}
				if err := json.Unmarshal(args, &a); err != nil || a.Author == nil {
					return "", errors.New("invalid arguments: author is required")
				}
				return searchBooksByAuthor(ctx, api, *a.Author), nil
			},
		},
	}
}

func getBookByName(ctx context.Context, api BookAPI, name string) string {
	b, err := api.GetByName(ctx, name)
	if err != nil {
		if isAPIResponse(err) {
			return "Book not found"
		}
		return "Error accessing API: " + err.Error()
	}
	return fmt.Sprintf("Book found: %s by %s (%d)", b.Name, b.Author, b.Year)
}

func createBook(ctx context.Context, api BookAPI, in book.Input) string {
	b, err := api.Create(ctx, in)
	if err != nil {
		if isAPIResponse(err) {
			return "Failed to create book"
		}
		return "Error accessing API: " + err.Error()
	}
	return fmt.Sprintf("Book created: %s by %s (%d)", b.Name, b.Author, b.Year)
}

func searchBooksByAuthor(ctx context.Context, api BookAPI, author string) string {
	books, err := api.ListByAuthor(ctx, author)
	if err != nil {
		if isAPIResponse(err) {
			return "Error searching books"
		}
		return "Error accessing API: " + err.Error()
	}
	if len(books) == 0 {
		return fmt.Sprintf("No books found by author '%s'", author)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d book(s) by author '%s':", len(books), author)
	for _, b := range books {
		fmt.Fprintf(&sb, "\n- %s (%d)", b.Name, b.Year)
	}
	return sb.String()
}

// isAPIResponse reports whether the API answered with a non-2xx status, as
// opposed to the request failing outright.
func isAPIResponse(err error) bool {
	var statusErr *client.StatusError
	return errors.As(err, &statusErr)
}

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookcatalog/internal/book"
	"bookcatalog/internal/client"

	"github.com/charmbracelet/log"
)

// BookAPI is the part of the catalog client the book tools use.
type BookAPI interface {
	List(ctx context.Context) ([]book.Book, error)
	Get(ctx context.Context, id int) (book.Book, error)
	Search(ctx context.Context, q book.SearchQuery) ([]book.Book, error)
	Create(ctx context.Context, in book.Input) (book.Book, error)
	Delete(ctx context.Context, id int) (string, error)
}

var _ BookAPI = (*client.Client)(nil)

// Func adapts a function to the Tool interface.
type Func struct {
	ToolName        string
	ToolDescription string
	ToolSchema      json.RawMessage
	ToolAnnotations Annotations
	Run             func(ctx context.Context, args json.RawMessage) (string, error)
}

func (f *Func) Name() string             { return f.ToolName }
func (f *Func) Description() string      { return f.ToolDescription }
func (f *Func) Schema() json.RawMessage  { return f.ToolSchema }
func (f *Func) Annotations() Annotations { return f.ToolAnnotations }

func (f *Func) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	return f.Run(ctx, args)
}

const (
	schemaNoArgs = `{"type":"object","properties":{}}`
	schemaBookID = `{"type":"object","properties":{"book_id":{"type":"integer","description":"ID of the book"}},"required":["book_id"]}`
	schemaSearch = `{"type":"object","properties":{"author":{"type":"string","description":"Substring of the author, case-insensitive"},"name":{"type":"string","description":"Substring of the book name, case-insensitive"}}}`
	schemaAdd    = `{"type":"object","properties":{"name":{"type":"string","description":"Name of the book"},"author":{"type":"string","description":"Author of the book"},"year":{"type":"integer","description":"Publication year"}},"required":["name","author","year"]}`
)

type bookTools struct {
	api    BookAPI
	logger *log.Logger
}

// BookTools returns the catalog tools in their canonical order:
// get_all_books, get_book_by_id, search_books, add_book, delete_book.
func BookTools(api BookAPI, logger *log.Logger) []Tool {
	bt := &bookTools{api: api, logger: logger}
	return []Tool{
		&Func{
			ToolName:        "get_all_books",
			ToolDescription: "Returns all books from the storage.",
			ToolSchema:      json.RawMessage(schemaNoArgs),
			ToolAnnotations: Annotations{ReadOnly: true, Idempotent: true},
			Run:             bt.getAllBooks,
		},
		&Func{
			ToolName:        "get_book_by_id",
			ToolDescription: "Returns a single book by its ID.",
			ToolSchema:      json.RawMessage(schemaBookID),
			ToolAnnotations: Annotations{ReadOnly: true, Idempotent: true},
			Run:             bt.getBookByID,
		},
		&Func{
			ToolName:        "search_books",
			ToolDescription: "Searches books by author and/or title. At least one parameter must be provided.",
			ToolSchema:      json.RawMessage(schemaSearch),
			ToolAnnotations: Annotations{ReadOnly: true, Idempotent: true},
			Run:             bt.searchBooks,
		},
		&Func{
			ToolName:        "add_book",
			ToolDescription: "Adds a new book to the storage. REQUIRES HUMAN CONFIRMATION before executing.",
			ToolSchema:      json.RawMessage(schemaAdd),
			ToolAnnotations: Annotations{},
			Run:             bt.addBook,
		},
		&Func{
			ToolName:        "delete_book",
			ToolDescription: "Permanently deletes a book from the storage by its ID. REQUIRES HUMAN CONFIRMATION before executing.",
			ToolSchema:      json.RawMessage(schemaBookID),
			ToolAnnotations: Annotations{Destructive: true},
			Run:             bt.deleteBook,
		},
	}
}

func (bt *bookTools) getAllBooks(ctx context.Context, _ json.RawMessage) (string, error) {
	const tool = "get_all_books"
	bt.logger.Info("Tool call", "tool", tool)

	books, err := bt.api.List(ctx)
	if err != nil {
		bt.logger.Error("Tool error", "tool", tool, "error", err)
		return "", err
	}
	bt.logger.Info("Tool success", "tool", tool, "status", "success", "items", len(books))
	return prettyJSON(books)
}

type bookIDArgs struct {
	BookID *int `json:"book_id"`
}

func parseBookID(args json.RawMessage) (int, error) {
	var a bookIDArgs
	if err := decodeArgs(args, &a); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}
	if a.BookID == nil {
		return 0, errors.New("invalid arguments: book_id is required")
	}
	return *a.BookID, nil
}

func (bt *bookTools) getBookByID(ctx context.Context, args json.RawMessage) (string, error) {
	const tool = "get_book_by_id"
	id, err := parseBookID(args)
	if err != nil {
		return "", err
	}
	bt.logger.Info("Tool call", "tool", tool, "book_id", id)

	b, err := bt.api.Get(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		bt.logger.Info("Tool result", "tool", tool, "status", "not_found", "book_id", id)
		return errorJSON(fmt.Sprintf("Book with ID %d not found", id))
	}
	if err != nil {
		bt.logger.Error("Tool error", "tool", tool, "book_id", id, "error", err)
		return "", err
	}
	bt.logger.Info("Tool success", "tool", tool, "status", "success", "book_id", id)
	return prettyJSON(b)
}

func (bt *bookTools) searchBooks(ctx context.Context, args json.RawMessage) (string, error) {
	const tool = "search_books"
	var a struct {
		Author string `json:"author"`
		Name   string `json:"name"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	q := book.SearchQuery{Author: a.Author, Name: a.Name}
	bt.logger.Info("Tool call", "tool", tool, "author", q.Author, "name", q.Name)

	if q.Author == "" && q.Name == "" {
		bt.logger.Warn("Tool missing parameters", "tool", tool)
		return errorJSON("Provide at least one search parameter: author or name")
	}

	books, err := bt.api.Search(ctx, q)
	if err != nil {
		bt.logger.Error("Tool error", "tool", tool, "error", err)
		return "", err
	}
	bt.logger.Info("Tool success", "tool", tool, "status", "success", "results", len(books))
	return prettyJSON(books)
}

func (bt *bookTools) addBook(ctx context.Context, args json.RawMessage) (string, error) {
	const tool = "add_book"
	var a struct {
		Name   *string `json:"name"`
		Author *string `json:"author"`
		Year   *int    `json:"year"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}
	if a.Name == nil || a.Author == nil || a.Year == nil {
		return "", errors.New("invalid arguments: name, author and year are required")
	}
	in := book.Input{Author: *a.Author, Name: *a.Name, Year: *a.Year}
	bt.logger.Info("Tool call", "tool", tool, "name", in.Name, "author", in.Author, "year", in.Year)

	b, err := bt.api.Create(ctx, in)
	if err != nil {
		bt.logger.Error("Tool error", "tool", tool, "name", in.Name, "error", err)
		return "", err
	}
	bt.logger.Info("Tool success", "tool", tool, "status", "success", "book_id", b.ID)
	return prettyJSON(b)
}

func (bt *bookTools) deleteBook(ctx context.Context, args json.RawMessage) (string, error) {
	const tool = "delete_book"
	id, err := parseBookID(args)
	if err != nil {
		return "", err
	}
	bt.logger.Info("Tool call", "tool", tool, "book_id", id)

	msg, err := bt.api.Delete(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		bt.logger.Info("Tool result", "tool", tool, "status", "not_found", "book_id", id)
		return errorJSON(fmt.Sprintf("Book with ID %d not found", id))
	}
	if err != nil {
		bt.logger.Error("Tool error", "tool", tool, "book_id", id, "error", err)
		return "", err
	}
	bt.logger.Info("Tool success", "tool", tool, "status", "success", "book_id", id)
	return prettyJSON(map[string]string{"message": msg})
}

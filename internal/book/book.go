package book

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrMalformedStore is returned when the backing store exists but does not hold
// a valid collection of books.
var ErrMalformedStore = errors.New("malformed book store")

// Book represents a book record.
type Book struct {
	ID     int    `json:"id"`
	Author string `json:"author"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
}

// Input carries the caller-supplied fields of a book. The id is never part of it.
type Input struct {
	Author string
	Name   string
	Year   int
}

// SearchQuery filters books by case-insensitive substrings.
// Empty fields do not filter.
type SearchQuery struct {
	Author string
	Name   string
}

// StoreError reports a failure of the backing store.
type StoreError struct {
	Op   string
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("store %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

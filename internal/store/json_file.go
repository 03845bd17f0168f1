package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bookcatalog/internal/book"
)

// JSONFile stores the catalog as a single JSON array on disk.
type JSONFile struct {
	Path string
	// Atomic writes to a temp file in the same directory and renames it over
	// Path. When false the file is truncated and rewritten in place.
	Atomic bool
}

func NewJSONFile(path string, atomic bool) *JSONFile {
	return &JSONFile{Path: path, Atomic: atomic}
}

type fileRecord struct {
	ID     *int    `json:"id"`
	Author *string `json:"author"`
	Name   *string `json:"name"`
	Year   *int    `json:"year"`
}

// Load reads the whole file. A missing or blank file is an empty catalog.
func (s *JSONFile) Load(ctx context.Context) ([]book.Book, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []book.Book{}, nil
	}
	if err != nil {
		return nil, &book.StoreError{Op: "load", Path: s.Path, Err: err}
	}

	books, err := decodeBooks(data)
	if err != nil {
		return nil, &book.StoreError{Op: "load", Path: s.Path, Err: err}
	}
	return books, nil
}

func decodeBooks(data []byte) ([]book.Book, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []book.Book{}, nil
	}
	if data[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value is not an array", book.ErrMalformedStore)
	}

	var records []fileRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", book.ErrMalformedStore, err)
	}

	books := make([]book.Book, 0, len(records))
	seen := make(map[int]bool, len(records))
	for i, r := range records {
		if r.ID == nil || r.Author == nil || r.Name == nil || r.Year == nil {
			return nil, fmt.Errorf("%w: record %d is missing a field", book.ErrMalformedStore, i)
		}
		if *r.ID <= 0 {
			return nil, fmt.Errorf("%w: record %d has non-positive id %d", book.ErrMalformedStore, i, *r.ID)
		}
		if seen[*r.ID] {
			return nil, fmt.Errorf("%w: duplicate id %d", book.ErrMalformedStore, *r.ID)
		}
		seen[*r.ID] = true
		books = append(books, book.Book{ID: *r.ID, Author: *r.Author, Name: *r.Name, Year: *r.Year})
	}
	return books, nil
}

// Save rewrites the whole file with four-space indentation.
func (s *JSONFile) Save(ctx context.Context, books []book.Book) error {
	if books == nil {
		books = []book.Book{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(books); err != nil {
		return &book.StoreError{Op: "save", Path: s.Path, Err: err}
	}

	write := s.writeInPlace
	if s.Atomic {
		write = s.writeAtomic
	}
	if err := write(buf.Bytes()); err != nil {
		return &book.StoreError{Op: "save", Path: s.Path, Err: err}
	}
	return nil
}

// Ping reports whether the file can currently be loaded.
func (s *JSONFile) Ping(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *JSONFile) writeInPlace(data []byte) error {
	return os.WriteFile(s.Path, data, 0o644)
}

func (s *JSONFile) writeAtomic(data []byte) error {
	dir, base := filepath.Split(s.Path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, s.Path)
}

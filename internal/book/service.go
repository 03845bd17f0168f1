package book

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// Service implements the catalog operations over a Store.
//
// The collection is held in memory and written back through the Store after
// every successful mutation. Mutations are serialized by the service; a failed
// Save leaves the in-memory collection untouched. Writers in other processes
// sharing the same Store are not coordinated and the last Save wins.
type Service struct {
	store Store

	mu    sync.RWMutex
	books []Book
}

// NewService creates a new book service. Call Open before serving requests.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Open loads the collection from the store.
func (s *Service) Open(ctx context.Context) error {
	return s.Reload(ctx)
}

// Reload replaces the in-memory collection with the store's current contents.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	books, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.books = books
	return nil
}

// Count returns the number of books in the catalog.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books)
}

// Create assigns the next id, appends the book and persists the collection.
func (s *Service) Create(ctx context.Context, in Input) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := Book{ID: nextID(s.books), Author: in.Author, Name: in.Name, Year: in.Year}
	next := append(slices.Clone(s.books), b)
	if err := s.store.Save(ctx, next); err != nil {
		return Book{}, err
	}
	s.books = next
	return b, nil
}

// Get returns the book with the given id.
func (s *Service) Get(ctx context.Context, id int) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.books[i], nil
	}
	return Book{}, ErrNotFound
}

// GetByName returns the first book, in storage order, whose name equals name
// ignoring case.
func (s *Service) GetByName(ctx context.Context, name string) (Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	want := strings.ToLower(name)
	for _, b := range s.books {
		if strings.ToLower(b.Name) == want {
			return b, nil
		}
	}
	return Book{}, ErrNotFound
}

// List returns every book in storage order.
func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.Search(ctx, SearchQuery{})
}

// Search returns the books whose author and name contain the query's
// substrings, ignoring case. Both filters must match when both are set.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author := strings.ToLower(q.Author)
	name := strings.ToLower(q.Name)

	out := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		if author != "" && !strings.Contains(strings.ToLower(b.Author), author) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(b.Name), name) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// ListByAuthor returns the books whose author contains author, ignoring case.
func (s *Service) ListByAuthor(ctx context.Context, author string) ([]Book, error) {
	return s.Search(ctx, SearchQuery{Author: author})
}

// Update replaces every field except the id of an existing book.
func (s *Service) Update(ctx context.Context, id int, in Input) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return Book{}, ErrNotFound
	}

	b := Book{ID: id, Author: in.Author, Name: in.Name, Year: in.Year}
	next := slices.Clone(s.books)
	next[i] = b
	if err := s.store.Save(ctx, next); err != nil {
		return Book{}, err
	}
	s.books = next
	return b, nil
}

// Delete removes the book with the given id.
func (s *Service) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}

	next := slices.Delete(slices.Clone(s.books), i, i+1)
	if err := s.store.Save(ctx, next); err != nil {
		return err
	}
	s.books = next
	return nil
}

func (s *Service) indexOf(id int) int {
	for i, b := range s.books {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func nextID(books []Book) int {
	highest := 0
	for _, b := range books {
		if b.ID > highest {
			highest = b.ID
		}
	}
	return highest + 1
}

package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_store.go -package=book

// Store is the persistence boundary for the catalog. Load returns the full
// collection in storage order and Save replaces it entirely.
type Store interface {
	Load(ctx context.Context) ([]Book, error)
	Save(ctx context.Context, books []Book) error
}

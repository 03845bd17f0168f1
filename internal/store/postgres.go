package store

import (
	"context"
	"time"

	"bookcatalog/internal/book"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps the catalog in the books table. Row order is carried by the
// position column so a reload yields the same sequence that was saved.
type Postgres struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgres(db *pgxpool.Pool, timeout time.Duration) *Postgres {
	return &Postgres{db: db, timeout: timeout}
}

func (r *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Postgres) Load(ctx context.Context) ([]book.Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, author, name, year
		FROM books
		ORDER BY position
	`)
	if err != nil {
		return nil, &book.StoreError{Op: "load", Err: err}
	}
	defer rows.Close()

	books := []book.Book{}
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(&b.ID, &b.Author, &b.Name, &b.Year); err != nil {
			return nil, &book.StoreError{Op: "load", Err: err}
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &book.StoreError{Op: "load", Err: err}
	}
	return books, nil
}

// Save replaces the table contents in one transaction.
func (r *Postgres) Save(ctx context.Context, books []book.Book) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.save(ctx, books); err != nil {
		return &book.StoreError{Op: "save", Err: err}
	}
	return nil
}

func (r *Postgres) save(ctx context.Context, books []book.Book) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM books`); err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for i, b := range books {
		batch.Queue(`
			INSERT INTO books (id, author, name, year, position)
			VALUES ($1, $2, $3, $4, $5)
		`, b.ID, b.Author, b.Name, b.Year, i)
	}

	br := tx.SendBatch(ctx, batch)
	for range books {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.Ping(ctx)
}

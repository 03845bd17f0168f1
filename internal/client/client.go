// Package client talks to the book catalog HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookcatalog/internal/book"

	"golang.org/x/time/rate"
)

// ErrNotFound is matched by errors.Is for any 404 response.
var ErrNotFound = errors.New("not found")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status code: %d", e.Code)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Detail)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRateLimit caps outgoing requests. rps <= 0 leaves the client unlimited.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: "bookcatalog-client/1.0",
		baseURL:   strings.TrimRight(baseURL, "/"),
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type bookBody struct {
	Author string `json:"author"`
	Name   string `json:"name"`
	Year   int    `json:"year"`
}

// List returns every book (GET /books/all).
func (c *Client) List(ctx context.Context) ([]book.Book, error) {
	var res []book.Book
	if err := c.do(ctx, http.MethodGet, "/books/all", nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Get(ctx context.Context, id int) (book.Book, error) {
	var res book.Book
	if err := c.do(ctx, http.MethodGet, "/books/"+strconv.Itoa(id), nil, nil, &res); err != nil {
		return book.Book{}, err
	}
	return res, nil
}

func (c *Client) GetByName(ctx context.Context, name string) (book.Book, error) {
	var res book.Book
	q := url.Values{"name": {name}}
	if err := c.do(ctx, http.MethodGet, "/books", q, nil, &res); err != nil {
		return book.Book{}, err
	}
	return res, nil
}

// Search sends only the filters that are set.
func (c *Client) Search(ctx context.Context, query book.SearchQuery) ([]book.Book, error) {
	q := url.Values{}
	if query.Author != "" {
		q.Set("author", query.Author)
	}
	if query.Name != "" {
		q.Set("name", query.Name)
	}

	var res []book.Book
	if err := c.do(ctx, http.MethodGet, "/books/search", q, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) ListByAuthor(ctx context.Context, author string) ([]book.Book, error) {
	var res []book.Book
	if err := c.do(ctx, http.MethodGet, "/books/author/"+url.PathEscape(author), nil, nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) Create(ctx context.Context, in book.Input) (book.Book, error) {
	var res book.Book
	body := bookBody{Author: in.Author, Name: in.Name, Year: in.Year}
	if err := c.do(ctx, http.MethodPost, "/books", nil, body, &res); err != nil {
		return book.Book{}, err
	}
	return res, nil
}

func (c *Client) Update(ctx context.Context, id int, in book.Input) (book.Book, error) {
	var res book.Book
	body := bookBody{Author: in.Author, Name: in.Name, Year: in.Year}
	if err := c.do(ctx, http.MethodPut, "/books/"+strconv.Itoa(id), nil, body, &res); err != nil {
		return book.Book{}, err
	}
	return res, nil
}

// Delete removes a book and returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, id int) (string, error) {
	var res struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodDelete, "/books/"+strconv.Itoa(id), nil, nil, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, target any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Detail: readDetail(resp.Body)}
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readDetail extracts the "detail" field of an error body, falling back to
// the raw text.
func readDetail(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 64<<10))

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return strings.TrimSpace(string(raw))
}

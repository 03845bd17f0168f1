package book

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bookcatalog/internal/httpx"

	"github.com/charmbracelet/log"
)

type HTTPHandler struct {
	service *Service
	logger  *log.Logger
}

func NewHTTPHandler(service *Service, logger *log.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /books", h.Create)
	mux.HandleFunc("GET /books", h.GetByName)
	mux.HandleFunc("GET /books/all", h.List)
	mux.HandleFunc("GET /books/search", h.Search)
	mux.HandleFunc("GET /books/author/{author}", h.ListByAuthor)
	mux.HandleFunc("GET /books/{id}", h.Get)
	mux.HandleFunc("PUT /books/{id}", h.Update)
	mux.HandleFunc("DELETE /books/{id}", h.Delete)
}

type bookRequest struct {
	Author string `json:"author" validate:"required,notblank"`
	Name   string `json:"name" validate:"required,notblank"`
	Year   *int   `json:"year" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Create handles POST /books
// @Summary Create a book
// @Tags books
// @Accept json
// @Produce json
// @Param book body bookRequest true "Book fields"
// @Success 200 {object} Book
// @Failure 422 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// Get handles GET /books/{id}
// @Summary Get book by id
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// GetByName handles GET /books?name=
// @Summary Get book by exact name
// @Description Case-insensitive exact match; the first match in storage order wins.
// @Tags books
// @Produce json
// @Param name query string true "Name of the book"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) GetByName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("name") {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, httpx.CodeValidation, "Invalid request",
			[]httpx.ErrorDetail{{Field: "name", Message: "name is required"}})
		return
	}

	b, err := h.service.GetByName(r.Context(), query.Get("name"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// List handles GET /books/all
// @Summary List every book
// @Tags books
// @Produce json
// @Success 200 {array} Book
// @Router /books/all [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

// Search handles GET /books/search
// @Summary Search books
// @Description Case-insensitive substring match on author and/or name.
// @Tags books
// @Produce json
// @Param author query string false "Author of the book"
// @Param name query string false "Name of the book"
// @Success 200 {array} Book
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	books, err := h.service.Search(r.Context(), SearchQuery{
		Author: query.Get("author"),
		Name:   query.Get("name"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

// ListByAuthor handles GET /books/author/{author}
// @Summary List books by author
// @Tags books
// @Produce json
// @Param author path string true "Author substring"
// @Success 200 {array} Book
// @Router /books/author/{author} [get]
func (h *HTTPHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListByAuthor(r.Context(), r.PathValue("author"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, books)
}

// Update handles PUT /books/{id}
// @Summary Replace a book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param book body bookRequest true "Book fields"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	b, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, b)
}

// Delete handles DELETE /books/{id}
// @Summary Delete a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, messageResponse{Message: "Book deleted"})
}

func (h *HTTPHandler) decodeInput(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, httpx.CodeRequestTooLarge, "Request body too large", nil)
			return Input{}, false
		}
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid JSON body", nil)
		return Input{}, false
	}

	if details := httpx.ValidateStruct(req); details != nil {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, httpx.CodeValidation, "Invalid request", details)
		return Input{}, false
	}

	return Input{Author: req.Author, Name: req.Name, Year: *req.Year}, true
}

func parseID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, httpx.CodeValidation, "Invalid request",
			[]httpx.ErrorDetail{{Field: "id", Message: "id must be an integer"}})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Book not found", nil)
		return
	}

	h.logger.Error("book request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", httpx.RequestIDFrom(r),
		"error", err,
	)

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeStore, "Internal server error", nil)
		return
	}
	httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
}

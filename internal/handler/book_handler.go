package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bookshelf/internal/dto"
	"bookshelf/internal/query"
	"bookshelf/internal/service"
)

type BookHandler struct {
	svc service.BookService
}

func NewBookHandler(svc service.BookService) *BookHandler {
	return &BookHandler{svc: svc}
}

func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

// List handles GET /book with pagination, sorting and an optional author
// filter. A malformed userId fails validation before any store call.
func (h *BookHandler) List(c *gin.Context) {
	params, err := query.ParseListParams(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	books, authors, pagination, err := h.svc.List(ctx, params)
	if err != nil {
		respondError(c, err)
		return
	}

	// Filtered requests carry the resolved author on each item.
	if authors != nil {
		enriched := make([]dto.BookWithAuthor, 0, len(books))
		for _, book := range books {
			enriched = append(enriched, dto.BookWithAuthor{Book: book, Author: authors[book.ID]})
		}
		c.JSON(http.StatusOK, gin.H{"pagination": pagination, "data": enriched})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pagination": pagination, "data": books})
}

func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	book, author, err := h.svc.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookWithAuthor{Book: *book, Author: author})
}

func (h *BookHandler) Create(c *gin.Context) {
	var in dto.CreateBookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := in.ToModel()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Create(ctx, &book); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *BookHandler) Update(c *gin.Context) {
	var in dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	book, err := in.ToModel()
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	updated, author, err := h.svc.Update(ctx, c.Param("id"), &book)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BookWithAuthor{Book: *updated, Author: author})
}

// Delete is unconditional: a missing record and a store failure both map to
// the same 500, there is no 404 differentiation on this endpoint.
func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

package dto

import (
	"time"

	"bookshelf/internal/apperror"
	"bookshelf/internal/models"
)

// publishedLayouts are the accepted input formats for the published date.
var publishedLayouts = []string{time.RFC3339, "2006-01-02"}

// CreateBookRequest used for POST /book. The legacy free-text "author" field
// is accepted as an alias for "authorId"; the mapping happens here at the
// boundary only, the stored model carries a single reference field.
type CreateBookRequest struct {
	Title     string  `json:"title" binding:"required"`
	AuthorID  *string `json:"authorId,omitempty"`
	Author    *string `json:"author,omitempty"` // legacy alias for authorId
	Published *string `json:"published,omitempty"`
}

func (d CreateBookRequest) ToModel() (models.Book, error) {
	published, err := parsePublished(d.Published)
	if err != nil {
		return models.Book{}, err
	}
	return models.Book{
		Title:     d.Title,
		AuthorID:  coalesceAuthor(d.AuthorID, d.Author),
		Published: published,
	}, nil
}

// UpdateBookRequest used for PUT /book/:id. Only title, author reference and
// published date are updatable.
type UpdateBookRequest struct {
	Title     string  `json:"title" binding:"required"`
	AuthorID  *string `json:"authorId,omitempty"`
	Author    *string `json:"author,omitempty"`
	Published *string `json:"published,omitempty"`
}

func (d UpdateBookRequest) ToModel() (models.Book, error) {
	published, err := parsePublished(d.Published)
	if err != nil {
		return models.Book{}, err
	}
	return models.Book{
		Title:     d.Title,
		AuthorID:  coalesceAuthor(d.AuthorID, d.Author),
		Published: published,
	}, nil
}

// BookWithAuthor is the enriched response shape: the book plus its resolved
// author record, null when the reference dangles.
type BookWithAuthor struct {
	models.Book
	Author *models.User `json:"author"`
}

func coalesceAuthor(authorID, author *string) *string {
	if authorID != nil && *authorID != "" {
		return authorID
	}
	if author != nil && *author != "" {
		return author
	}
	return nil
}

func parsePublished(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Validation("Invalid published date")
}

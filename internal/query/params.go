package query

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"bookshelf/internal/apperror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// sortFields maps the accepted sortBy values to store column names. Anything
// outside this map is rejected instead of being forwarded to the store.
var sortFields = map[string]string{
	"title":     "title",
	"author":    "author_id",
	"authorId":  "author_id",
	"published": "published",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// ListParams is the validated form of the raw list-endpoint query string.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string // store column, already mapped through the allow-list
	Ascending bool
	AuthorID  string // empty means unfiltered
}

// Skip returns the offset for the requested page.
func (p ListParams) Skip() int {
	return (p.Page - 1) * p.Limit
}

// ParseListParams validates untrusted query parameters into ListParams.
// Rules:
//   - page: integer, default 1; values below 1 are clamped to 1.
//   - limit: integer in [1, 100], default 10.
//   - sortBy: allow-listed field name, default createdAt.
//   - sortOrder: only the literal "asc" selects ascending order; any other
//     value, including absent, sorts descending.
//   - userId: "all" or absent disables the filter; otherwise it must be a
//     valid UUID. A malformed value fails here, before any store call.
func ParseListParams(values url.Values) (ListParams, error) {
	p := ListParams{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		SortBy: sortFields["createdAt"],
	}

	if raw := values.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperror.ValidationFields("invalid query parameters",
				map[string]string{"page": "must be an integer"})
		}
		if n < 1 {
			n = 1
		}
		p.Page = n
	}

	if raw := values.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return p, apperror.ValidationFields("invalid query parameters",
				map[string]string{"limit": "must be an integer"})
		}
		if n < 1 || n > MaxLimit {
			return p, apperror.ValidationFields("invalid query parameters",
				map[string]string{"limit": "must be between 1 and 100"})
		}
		p.Limit = n
	}

	if raw := values.Get("sortBy"); raw != "" {
		column, ok := sortFields[raw]
		if !ok {
			return p, apperror.ValidationFields("invalid query parameters",
				map[string]string{"sortBy": "must be one of: title, author, authorId, published, createdAt, updatedAt"})
		}
		p.SortBy = column
	}

	p.Ascending = values.Get("sortOrder") == "asc"

	if raw := values.Get("userId"); raw != "" && raw != "all" {
		if _, err := uuid.Parse(raw); err != nil {
			return p, apperror.ValidationFields("invalid query parameters",
				map[string]string{"userId": "must be a valid user id"})
		}
		p.AuthorID = raw
	}

	return p, nil
}

// Order returns the ORDER BY clause for the validated sort settings.
func (p ListParams) Order() string {
	if p.Ascending {
		return p.SortBy + " asc"
	}
	return p.SortBy + " desc"
}

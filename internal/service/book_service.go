package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"bookshelf/internal/apperror"
	"bookshelf/internal/models"
	"bookshelf/internal/query"
	"bookshelf/internal/repository"
)

type BookService interface {
	List(ctx context.Context, params query.ListParams) ([]models.Book, map[string]*models.User, query.Pagination, error)
	GetByID(ctx context.Context, id string) (*models.Book, *models.User, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, id string, book *models.Book) (*models.Book, *models.User, error)
	Delete(ctx context.Context, id string) error
}

type bookService struct {
	bookRepo repository.BookRepository
	userRepo repository.UserRepository
}

func NewBookService(bookRepo repository.BookRepository, userRepo repository.UserRepository) BookService {
	return &bookService{bookRepo: bookRepo, userRepo: userRepo}
}

// List returns one page of books plus the pagination envelope. When an author
// filter is active each returned book gets its author resolved with one extra
// lookup per item. That N+1 is a known scalability limit of the filtered
// listing, kept as-is; the authors map is nil for unfiltered requests.
func (s *bookService) List(ctx context.Context, params query.ListParams) ([]models.Book, map[string]*models.User, query.Pagination, error) {
	books, total, err := s.bookRepo.List(ctx, params)
	if err != nil {
		return nil, nil, query.Pagination{}, apperror.Storage("Failed to fetch books", err)
	}

	var authors map[string]*models.User
	if params.AuthorID != "" {
		authors = make(map[string]*models.User)
		for _, book := range books {
			if book.AuthorID == nil {
				continue
			}
			authors[book.ID] = s.resolveAuthor(ctx, *book.AuthorID)
		}
	}

	return books, authors, query.NewPagination(total, params.Page, params.Limit), nil
}

func (s *bookService) GetByID(ctx context.Context, id string) (*models.Book, *models.User, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("Book")
		}
		return nil, nil, apperror.Storage("Failed to fetch book", err)
	}

	var author *models.User
	if book.AuthorID != nil {
		author = s.resolveAuthor(ctx, *book.AuthorID)
	}
	return book, author, nil
}

func (s *bookService) Create(ctx context.Context, book *models.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return apperror.Validation("Title is required")
	}
	if book.AuthorID == nil || strings.TrimSpace(*book.AuthorID) == "" {
		return apperror.Validation("Author is required")
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		return apperror.Storage("Failed to create book", err)
	}
	return nil
}

// Update applies a partial update: only title, author reference and published
// date can change.
func (s *bookService) Update(ctx context.Context, id string, book *models.Book) (*models.Book, *models.User, error) {
	existing, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("Book")
		}
		return nil, nil, apperror.Storage("Failed to update book", err)
	}

	if strings.TrimSpace(book.Title) != "" {
		existing.Title = book.Title
	}
	if book.AuthorID != nil {
		existing.AuthorID = book.AuthorID
	}
	if book.Published != nil {
		existing.Published = book.Published
	}

	if err := s.bookRepo.Update(ctx, existing); err != nil {
		return nil, nil, apperror.Storage("Failed to update book", err)
	}

	var author *models.User
	if existing.AuthorID != nil {
		author = s.resolveAuthor(ctx, *existing.AuthorID)
	}
	return existing, author, nil
}

// Delete removes the book unconditionally. A missing record is not
// distinguished from any other failure here, matching the endpoint contract.
func (s *bookService) Delete(ctx context.Context, id string) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return apperror.Storage("Failed to delete book", err)
	}
	return nil
}

// resolveAuthor looks up the referenced user. Dangling references are
// tolerated and resolve to nil.
func (s *bookService) resolveAuthor(ctx context.Context, authorID string) *models.User {
	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		return nil
	}
	return author
}

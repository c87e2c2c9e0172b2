package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"bookshelf/internal/models"
	"bookshelf/internal/query"
)

// BookRepository defines the data operations the book service depends on.
type BookRepository interface {
	List(ctx context.Context, params query.ListParams) ([]models.Book, int64, error)
	FindByID(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, book *models.Book) error
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id string) error
}

// bookRepository is the GORM implementation of BookRepository.
type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// List fetches one page under the validated filter/sort and counts the total
// under the same filter. The two queries run concurrently; they are
// independent reads, and a transient mismatch between count and page content
// during concurrent writes is acceptable for paging.
func (r *bookRepository) List(ctx context.Context, params query.ListParams) ([]models.Book, int64, error) {
	var (
		list  []models.Book
		total int64
	)

	countErr := make(chan error, 1)
	go func() {
		q := r.db.WithContext(ctx).Model(&models.Book{})
		if params.AuthorID != "" {
			q = q.Where("author_id = ?", params.AuthorID)
		}
		countErr <- q.Count(&total).Error
	}()

	q := r.db.WithContext(ctx)
	if params.AuthorID != "" {
		q = q.Where("author_id = ?", params.AuthorID)
	}
	fetchErr := q.Order(params.Order()).
		Limit(params.Limit).
		Offset(params.Skip()).
		Find(&list).Error

	if err := <-countErr; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if fetchErr != nil {
		return nil, 0, fmt.Errorf("list books: %w", fetchErr)
	}
	return list, total, nil
}

func (r *bookRepository) FindByID(ctx context.Context, id string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

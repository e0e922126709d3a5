package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/pkg/database"
)

const bulkInsertBatchSize = 100

// bookRepository implements BookRepository on top of gorm.
type bookRepository struct {
	db *database.MySQL
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *database.MySQL) BookRepository {
	return &bookRepository{db: db}
}

// Create inserts a new book record.
func (r *bookRepository) Create(ctx context.Context, book *domain.Book) error {
	if book.Status == "" {
		book.Status = domain.StatusActive
	}

	err := r.db.DB.WithContext(ctx).Create(book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("book with isbn %s already exists: %w", book.ISBNNumber, ErrDuplicateISBN)
		}
		return fmt.Errorf("failed to create book: %w", err)
	}

	return nil
}

// CreateBatch bulk-inserts books, used by the spreadsheet import.
func (r *bookRepository) CreateBatch(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	for _, book := range books {
		if book.Status == "" {
			book.Status = domain.StatusActive
		}
	}

	err := r.db.DB.WithContext(ctx).CreateInBatches(books, bulkInsertBatchSize).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("import contains an existing isbn: %w", ErrDuplicateISBN)
		}
		return fmt.Errorf("failed to import books: %w", err)
	}

	return nil
}

// GetByID retrieves an active book by id.
func (r *bookRepository) GetByID(ctx context.Context, bookID int64) (*domain.Book, error) {
	book := &domain.Book{}

	err := r.db.DB.WithContext(ctx).
		Where("book_id = ? AND status = ?", bookID, domain.StatusActive).
		First(book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with id %d not found: %w", bookID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}

	return book, nil
}

// GetByISBN retrieves a book by ISBN regardless of status, used for
// duplicate checks before insert.
func (r *bookRepository) GetByISBN(ctx context.Context, isbnNumber string) (*domain.Book, error) {
	book := &domain.Book{}

	err := r.db.DB.WithContext(ctx).
		Where("isbn_number = ?", isbnNumber).
		First(book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("book with isbn %s not found: %w", isbnNumber, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get book by isbn: %w", err)
	}

	return book, nil
}

// GetAllActive lists all active books.
func (r *bookRepository) GetAllActive(ctx context.Context) ([]*domain.Book, error) {
	var books []*domain.Book

	err := r.db.DB.WithContext(ctx).
		Where("status = ?", domain.StatusActive).
		Order("book_id").
		Find(&books).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	return books, nil
}

// Listing returns a filtered, paginated page of active books plus the total
// match count.
func (r *bookRepository) Listing(ctx context.Context, filter domain.BookFilter) ([]*domain.Book, int64, error) {
	query := r.db.DB.WithContext(ctx).
		Model(&domain.Book{}).
		Where("status = ?", domain.StatusActive)

	if filter.BookName != "" {
		query = query.Where("book_name LIKE ?", "%"+filter.BookName+"%")
	}
	if filter.BookAuthor != "" {
		query = query.Where("book_author LIKE ?", "%"+filter.BookAuthor+"%")
	}
	if filter.Publication != "" {
		query = query.Where("publication LIKE ?", "%"+filter.Publication+"%")
	}
	if filter.PublishDateFrom != nil {
		query = query.Where("publish_date >= ?", filter.PublishDateFrom)
	}
	if filter.PublishDateTo != nil {
		query = query.Where("publish_date <= ?", filter.PublishDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 10
	}

	var books []*domain.Book
	err := query.
		Order("book_id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}

	return books, total, nil
}

// Update changes the mutable book fields. ISBN is immutable after creation.
func (r *bookRepository) Update(ctx context.Context, book *domain.Book) error {
	now := time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&domain.Book{}).
		Where("book_id = ?", book.BookID).
		Updates(map[string]interface{}{
			"book_name":     book.BookName,
			"book_summary":  book.BookSummary,
			"book_author":   book.BookAuthor,
			"publication":   book.Publication,
			"publish_date":  book.PublishDate,
			"modified_by":   book.ModifiedBy,
			"modified_date": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update book: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("book with id %d not found: %w", book.BookID, ErrNotFound)
	}

	return nil
}

// SoftDelete deactivates the book.
func (r *bookRepository) SoftDelete(ctx context.Context, bookID, modifiedBy int64) error {
	now := time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&domain.Book{}).
		Where("book_id = ?", bookID).
		Updates(map[string]interface{}{
			"status":        domain.StatusInactive,
			"modified_by":   modifiedBy,
			"modified_date": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to delete book: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("book with id %d not found: %w", bookID, ErrNotFound)
	}

	return nil
}

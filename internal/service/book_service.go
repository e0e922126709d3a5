package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/repository"
)

const (
	importSheetName  = "Sheet1"
	importMaxRows    = 1000
	importDateLayout = "2006-01-02"
)

var exportHeader = []string{"ISBN Number", "Book Name", "Book Author", "Publication", "Publish Date", "Book Summary"}

// BookService manages the book catalogue, including the spreadsheet
// import/export paths.
type BookService struct {
	bookRepo repository.BookRepository
	logger   *zap.Logger
}

// NewBookService creates the book service.
func NewBookService(bookRepo repository.BookRepository, logger *zap.Logger) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		logger:   logger,
	}
}

// CreateBookInput is the validated payload for adding a book.
type CreateBookInput struct {
	ISBNNumber  string
	BookName    string
	BookSummary *string
	BookAuthor  *string
	Publication *string
	PublishDate time.Time
	CreatedBy   int64
}

// Create adds a book. The ISBN must be unused, including by deactivated
// books.
func (s *BookService) Create(ctx context.Context, input CreateBookInput) (*domain.Book, error) {
	if _, err := s.bookRepo.GetByISBN(ctx, input.ISBNNumber); err == nil {
		return nil, apperr.Validation("Book with this ISBN already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	book := &domain.Book{
		ISBNNumber:  input.ISBNNumber,
		BookName:    input.BookName,
		BookSummary: input.BookSummary,
		BookAuthor:  input.BookAuthor,
		Publication: input.Publication,
		PublishDate: input.PublishDate,
		Status:      domain.StatusActive,
		CreatedBy:   input.CreatedBy,
	}
	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicateISBN) {
			return nil, apperr.Validation("Book with this ISBN already exists")
		}
		return nil, apperr.Internal(err)
	}

	return book, nil
}

// UpdateBookInput is the validated payload for a book update. ISBN is
// immutable after creation.
type UpdateBookInput struct {
	BookID      int64
	BookName    string
	BookSummary *string
	BookAuthor  *string
	Publication *string
	PublishDate time.Time
	ModifiedBy  int64
}

// Update changes the mutable book fields.
func (s *BookService) Update(ctx context.Context, input UpdateBookInput) error {
	book := &domain.Book{
		BookID:      input.BookID,
		BookName:    input.BookName,
		BookSummary: input.BookSummary,
		BookAuthor:  input.BookAuthor,
		Publication: input.Publication,
		PublishDate: input.PublishDate,
		ModifiedBy:  input.ModifiedBy,
	}
	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// Delete deactivates the book.
func (s *BookService) Delete(ctx context.Context, bookID, modifiedBy int64) error {
	if err := s.bookRepo.SoftDelete(ctx, bookID, modifiedBy); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return apperr.Internal(err)
	}
	return nil
}

// GetByID returns one active book.
func (s *BookService) GetByID(ctx context.Context, bookID int64) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Internal(err)
	}
	return book, nil
}

// GetAll returns every active book.
func (s *BookService) GetAll(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.bookRepo.GetAllActive(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return books, nil
}

// ListingResult is one page of the filtered catalogue.
type ListingResult struct {
	Books []*domain.Book `json:"books"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// Listing returns a filtered, paginated catalogue page.
func (s *BookService) Listing(ctx context.Context, filter domain.BookFilter) (*ListingResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}

	books, total, err := s.bookRepo.Listing(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &ListingResult{
		Books: books,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ImportResult summarises one spreadsheet import.
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportSpreadsheet reads an xlsx upload, row format:
// ISBN | Book Name | Book Author | Publication | Publish Date (YYYY-MM-DD) | Summary.
// The first row is the header. Rows with a missing ISBN or name, a bad date,
// or an ISBN already in the catalogue are skipped and reported; the valid
// remainder is bulk-inserted.
func (s *BookService) ImportSpreadsheet(ctx context.Context, reader io.Reader, createdBy int64) (*ImportResult, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, apperr.Validation("Uploaded file is not a valid xlsx file")
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		sheet = importSheetName
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, apperr.Validation("Uploaded file has no readable sheet")
	}
	if len(rows) < 2 {
		return nil, apperr.Validation("Uploaded file has no data rows")
	}
	if len(rows)-1 > importMaxRows {
		return nil, apperr.Validation(fmt.Sprintf("Import supports at most %d rows", importMaxRows))
	}

	result := &ImportResult{}
	seen := make(map[string]bool)
	var books []*domain.Book

	for i, row := range rows[1:] {
		rowNum := i + 2

		book, err := s.parseImportRow(ctx, row, seen, createdBy)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		seen[book.ISBNNumber] = true
		books = append(books, book)
	}

	if len(books) > 0 {
		if err := s.bookRepo.CreateBatch(ctx, books); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	result.Imported = len(books)

	s.logger.Info("book import finished",
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

func (s *BookService) parseImportRow(ctx context.Context, row []string, seen map[string]bool, createdBy int64) (*domain.Book, error) {
	cell := func(idx int) string {
		if idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	isbn := cell(0)
	name := cell(1)
	if isbn == "" || name == "" {
		return nil, errors.New("isbn and book name are required")
	}
	if seen[isbn] {
		return nil, fmt.Errorf("duplicate isbn %s in file", isbn)
	}

	publishDate, err := time.Parse(importDateLayout, cell(4))
	if err != nil {
		return nil, fmt.Errorf("invalid publish date %q", cell(4))
	}

	if _, err := s.bookRepo.GetByISBN(ctx, isbn); err == nil {
		return nil, fmt.Errorf("isbn %s already exists", isbn)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	book := &domain.Book{
		ISBNNumber:  isbn,
		BookName:    name,
		PublishDate: publishDate,
		Status:      domain.StatusActive,
		CreatedBy:   createdBy,
	}
	if author := cell(2); author != "" {
		book.BookAuthor = &author
	}
	if publication := cell(3); publication != "" {
		book.Publication = &publication
	}
	if summary := cell(5); summary != "" {
		book.BookSummary = &summary
	}

	return book, nil
}

// ExportSpreadsheet writes the filtered catalogue (without pagination) to an
// xlsx workbook and returns its bytes.
func (s *BookService) ExportSpreadsheet(ctx context.Context, filter domain.BookFilter) ([]byte, error) {
	// Export ignores pagination: the whole filtered set goes in the file.
	filter.Page = 1
	filter.Limit = importMaxRows

	books, _, err := s.bookRepo.Listing(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	deref := func(p *string) string {
		if p != nil {
			return *p
		}
		return ""
	}

	for i, book := range books {
		values := []interface{}{
			book.ISBNNumber,
			book.BookName,
			deref(book.BookAuthor),
			deref(book.Publication),
			book.PublishDate.Format(importDateLayout),
			deref(book.BookSummary),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return nil, apperr.Internal(err)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, apperr.Internal(err)
	}

	return buf.Bytes(), nil
}

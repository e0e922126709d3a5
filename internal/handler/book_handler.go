package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/amarthakur0/go-api-template/internal/apperr"
	"github.com/amarthakur0/go-api-template/internal/domain"
	"github.com/amarthakur0/go-api-template/internal/dto"
	"github.com/amarthakur0/go-api-template/internal/service"
)

const (
	importFormField = "file"
	dateLayout      = "2006-01-02"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// BookHandler serves the book catalogue endpoints. All routes sit behind the
// auth middleware.
type BookHandler struct {
	bookService   *service.BookService
	logger        *zap.Logger
	maxUploadSize int64
}

// NewBookHandler creates the book handler. maxUploadSizeMB bounds the import
// upload.
func NewBookHandler(bookService *service.BookService, logger *zap.Logger, maxUploadSizeMB int64) *BookHandler {
	return &BookHandler{
		bookService:   bookService,
		logger:        logger,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

// Create handles POST /book/create.
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	publishDate, _ := time.Parse(dateLayout, req.PublishDate)

	book, err := h.bookService.Create(c.Request.Context(), service.CreateBookInput{
		ISBNNumber:  req.ISBNNumber,
		BookName:    req.BookName,
		BookSummary: req.BookSummary,
		BookAuthor:  req.BookAuthor,
		Publication: req.Publication,
		PublishDate: publishDate,
		CreatedBy:   actorID(c),
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, "Book created successfully", book)
}

// Update handles POST /book/update.
func (h *BookHandler) Update(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	publishDate, _ := time.Parse(dateLayout, req.PublishDate)

	err := h.bookService.Update(c.Request.Context(), service.UpdateBookInput{
		BookID:      req.BookID,
		BookName:    req.BookName,
		BookSummary: req.BookSummary,
		BookAuthor:  req.BookAuthor,
		Publication: req.Publication,
		PublishDate: publishDate,
		ModifiedBy:  actorID(c),
	})
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Book updated successfully", nil)
}

// Delete handles POST /book/delete.
func (h *BookHandler) Delete(c *gin.Context) {
	var req dto.DeleteBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid request payload")
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), req.BookID, actorID(c)); err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Book deleted successfully", nil)
}

// GetByID handles GET /book/get/:bookId.
func (h *BookHandler) GetByID(c *gin.Context) {
	bookID, err := strconv.ParseInt(c.Param("bookId"), 10, 64)
	if err != nil || bookID <= 0 {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid book id")
		return
	}

	book, err := h.bookService.GetByID(c.Request.Context(), bookID)
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Book fetched successfully", book)
}

// GetAll handles GET /book/getall.
func (h *BookHandler) GetAll(c *gin.Context) {
	books, err := h.bookService.GetAll(c.Request.Context())
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Books fetched successfully", books)
}

// Listing handles GET /book/listing: filtered, paginated catalogue search.
func (h *BookHandler) Listing(c *gin.Context) {
	var req dto.BookListingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid query parameters")
		return
	}

	result, err := h.bookService.Listing(c.Request.Context(), bookFilter(req))
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Books fetched successfully", result)
}

// Import handles POST /book/import: a multipart xlsx upload.
func (h *BookHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)

	fileHeader, err := c.FormFile(importFormField)
	if err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Upload file missing or too large")
		return
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".xlsx") {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Only xlsx files are supported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open upload", zap.Error(err))
		respondError(c, http.StatusInternalServerError, apperr.CodeNone, "Something went wrong")
		return
	}
	defer file.Close()

	result, err := h.bookService.ImportSpreadsheet(c.Request.Context(), file, actorID(c))
	if err != nil {
		respondAppError(c, err)
		return
	}

	respondOK(c, http.StatusOK, "Books imported successfully", result)
}

// Export handles GET /book/export: the filtered catalogue as an xlsx
// download.
func (h *BookHandler) Export(c *gin.Context) {
	var req dto.BookListingRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, apperr.CodeNone, "Invalid query parameters")
		return
	}

	content, err := h.bookService.ExportSpreadsheet(c.Request.Context(), bookFilter(req))
	if err != nil {
		respondAppError(c, err)
		return
	}

	filename := fmt.Sprintf("books_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, content)
}

func bookFilter(req dto.BookListingRequest) domain.BookFilter {
	filter := domain.BookFilter{
		BookName:    req.BookName,
		BookAuthor:  req.BookAuthor,
		Publication: req.Publication,
		Page:        req.Page,
		Limit:       req.Limit,
	}

	if req.PublishDateFrom != "" {
		if from, err := time.Parse(dateLayout, req.PublishDateFrom); err == nil {
			filter.PublishDateFrom = &from
		}
	}
	if req.PublishDateTo != "" {
		if to, err := time.Parse(dateLayout, req.PublishDateTo); err == nil {
			filter.PublishDateTo = &to
		}
	}

	return filter
}

package domain

import "time"

// Book is the catalogue record managed by the book CRUD endpoints.
type Book struct {
	BookID       int64        `gorm:"column:book_id;primaryKey;autoIncrement" json:"bookId"`
	ISBNNumber   string       `gorm:"column:isbn_number;size:20;uniqueIndex:unq_isbn_number" json:"isbnNumber"`
	BookName     string       `gorm:"column:book_name;size:100" json:"bookName"`
	BookSummary  *string      `gorm:"column:book_summary;size:500" json:"bookSummary,omitempty"`
	BookAuthor   *string      `gorm:"column:book_author;size:100" json:"bookAuthor,omitempty"`
	Publication  *string      `gorm:"column:publication;size:100" json:"publication,omitempty"`
	PublishDate  time.Time    `gorm:"column:publish_date" json:"publishDate"`
	Status       RecordStatus `gorm:"column:status;size:1;default:A" json:"-"`
	CreatedBy    int64        `gorm:"column:created_by" json:"-"`
	CreatedDate  time.Time    `gorm:"column:created_date;autoCreateTime" json:"createdDate"`
	ModifiedBy   int64        `gorm:"column:modified_by" json:"-"`
	ModifiedDate *time.Time   `gorm:"column:modified_date" json:"-"`
}

func (Book) TableName() string { return "book" }

// BookFilter carries the listing endpoint's filters and pagination.
type BookFilter struct {
	BookName        string
	BookAuthor      string
	Publication     string
	PublishDateFrom *time.Time
	PublishDateTo   *time.Time
	Page            int
	Limit           int
}

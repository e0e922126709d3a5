package repository

import (
	"github.com/amarthakur0/go-api-template/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User         UserRepository
	SessionToken SessionTokenRepository
	Book         BookRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.MySQL) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		SessionToken: NewSessionTokenRepository(db),
		Book:         NewBookRepository(db),
	}
}

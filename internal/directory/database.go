package directory

import (
	"context"
	stderrors "errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"foodguard/internal/errors"
	"foodguard/internal/model"
	"foodguard/internal/repository"
)

// Database is a Directory backed by the user table. It is the production
// substitution point for the development seed list.
type Database struct {
	users repository.UserRepository
}

var _ Directory = (*Database)(nil)

// NewDatabase creates a database-backed directory.
func NewDatabase(users repository.UserRepository) *Database {
	return &Database{users: users}
}

func (d *Database) Lookup(ctx context.Context, email, password string) (*model.User, error) {
	u, err := d.users.FindByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrInvalidCredentials
		}
		return nil, err
	}
	// MySQL matches emails case-insensitively under the default collation;
	// login requires an exact match.
	if u.Email != email {
		return nil, errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	return u, nil
}

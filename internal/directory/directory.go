// Package directory resolves credentials to user records. The session store
// only depends on the Directory interface, so the seed list used in
// development can be swapped for a real identity provider without touching
// session logic.
package directory

import (
	"context"

	"foodguard/internal/model"
)

// Directory looks up a user by credentials. Lookup returns
// errors.ErrInvalidCredentials for unknown email and wrong password alike,
// so callers cannot enumerate accounts.
type Directory interface {
	Lookup(ctx context.Context, email, password string) (*model.User, error)
}

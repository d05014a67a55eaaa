package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"foodguard/internal/errors"
	"foodguard/internal/model"
)

const bcryptCost = 10

// Entry is one seed record: a user plus its plaintext password. Passwords
// are hashed when the seed is built and never kept in clear.
type Entry struct {
	User     model.User
	Password string
}

// Seed is a fixed in-memory directory for development and tests.
type Seed struct {
	users map[string]*model.User
}

var _ Directory = (*Seed)(nil)

// NewSeed builds a directory from entries. Email matching is exact and
// case-sensitive; no normalization is applied.
func NewSeed(entries []Entry) (*Seed, error) {
	users := make(map[string]*model.User, len(entries))
	for _, e := range entries {
		hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password for %s: %w", e.User.Email, err)
		}
		u := e.User
		u.PasswordHash = string(hash)
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		users[u.Email] = &u
	}
	return &Seed{users: users}, nil
}

// Lookup matches email then password. Both failures collapse into
// ErrInvalidCredentials.
func (s *Seed) Lookup(ctx context.Context, email, password string) (*model.User, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, errors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrInvalidCredentials
	}
	out := *u
	return &out, nil
}

// Users returns the seed records, for loading them into a database.
func (s *Seed) Users() []*model.User {
	out := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		out = append(out, &copied)
	}
	return out
}

// DefaultEntries is the development user list: one superadmin plus an admin
// and a staff user for each subscription type.
func DefaultEntries() []Entry {
	bistro := uuid.MustParse("7b9a2f1e-4c8d-4f0a-9a36-2d1f5e8c0b11")
	trattoria := uuid.MustParse("c4e6d8a0-1b3f-4e5c-8d7a-9f0b2c4d6e22")
	return []Entry{
		{
			User: model.User{
				Email: "root@foodguard.app",
				Name:  "Platform Operator",
				Role:  model.RoleSuperadmin,
			},
			Password: "Sup3rAdmin!",
		},
		{
			User: model.User{
				Email:            "manager@harborbistro.com",
				Name:             "Nadia Kovac",
				Role:             model.RoleAdmin,
				RestaurantID:     bistro,
				RestaurantName:   "Harbor Bistro",
				SubscriptionType: model.SubscriptionSensor,
			},
			Password: "Harb0rB!stro",
		},
		{
			User: model.User{
				Email:            "chef@harborbistro.com",
				Name:             "Tomas Lindgren",
				Role:             model.RoleUser,
				RestaurantID:     bistro,
				RestaurantName:   "Harbor Bistro",
				SubscriptionType: model.SubscriptionSensor,
			},
			Password: "Lin3Ch3f!",
		},
		{
			User: model.User{
				Email:            "manager@oldtrattoria.com",
				Name:             "Giulia Ferraro",
				Role:             model.RoleAdmin,
				RestaurantID:     trattoria,
				RestaurantName:   "Old Trattoria",
				SubscriptionType: model.SubscriptionManual,
			},
			Password: "Tratt0ria!",
		},
		{
			User: model.User{
				Email:            "staff@oldtrattoria.com",
				Name:             "Marco Bellini",
				Role:             model.RoleUser,
				RestaurantID:     trattoria,
				RestaurantName:   "Old Trattoria",
				SubscriptionType: model.SubscriptionManual,
			},
			Password: "Kitch3nStaff!",
		},
	}
}

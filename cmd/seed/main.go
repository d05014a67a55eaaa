// Command seed loads the development user directory into MySQL so the
// server can run with DIRECTORY=mysql.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"foodguard/internal/config"
	"foodguard/internal/db"
	"foodguard/internal/directory"
	"foodguard/internal/model"
	"foodguard/internal/repository"
)

func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}
	if err := gormDB.AutoMigrate(&model.Restaurant{}, &model.User{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	seed, err := directory.NewSeed(directory.DefaultEntries())
	if err != nil {
		log.Fatalf("build seed: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(gormDB)

	restaurants := map[uuid.UUID]*model.Restaurant{}
	for _, u := range seed.Users() {
		if u.RestaurantID != uuid.Nil {
			restaurants[u.RestaurantID] = &model.Restaurant{
				ID:               u.RestaurantID,
				Name:             u.RestaurantName,
				SubscriptionType: u.SubscriptionType,
			}
		}
	}
	for _, r := range restaurants {
		if err := gormDB.WithContext(ctx).FirstOrCreate(r, "id = ?", r.ID).Error; err != nil {
			log.Fatalf("seed restaurant %s: %v", r.Name, err)
		}
	}

	created := 0
	for _, u := range seed.Users() {
		if _, err := users.FindByEmail(ctx, u.Email); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("check user %s: %v", u.Email, err)
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", u.Email, err)
		}
		created++
	}

	log.Printf("seed complete: %d restaurants, %d new users", len(restaurants), created)
}

package main

import (
	"log"
	"net/http"

	_ "foodguard/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"foodguard/internal/auth"
	"foodguard/internal/config"
	"foodguard/internal/db"
	"foodguard/internal/directory"
	"foodguard/internal/handler"
	"foodguard/internal/model"
	"foodguard/internal/repository"
	"foodguard/internal/router"
	"foodguard/internal/session"
	"foodguard/internal/storage"
)

// @title FoodGuard Session API
// @version 1.0
// @description Session lifecycle and role-gated view resolution for the FoodGuard compliance client.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	var dir directory.Directory
	switch cfg.Directory {
	case "mysql":
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			log.Fatalf("database init: %v", err)
		}
		if err := gormDB.AutoMigrate(&model.Restaurant{}, &model.User{}); err != nil {
			log.Fatalf("auto-migrate: %v", err)
		}
		dir = directory.NewDatabase(repository.NewUserRepository(gormDB))
	default:
		seed, err := directory.NewSeed(directory.DefaultEntries())
		if err != nil {
			log.Fatalf("seed directory: %v", err)
		}
		dir = seed
	}

	redisStorage := storage.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	tokens := auth.NewTokenService(cfg.JWTSecret)

	sessions := session.NewManager(func(deviceID string) *session.Store {
		return session.NewStore(
			redisStorage.WithPrefix("session:"+deviceID+":"),
			dir,
			session.WithIssuer(tokens),
			session.WithStorageTimeout(cfg.StorageTimeout),
		)
	})

	authHandler := handler.NewAuthHandler(sessions)
	viewHandler := handler.NewViewHandler(tokens)

	router.Register(e, cfg, authHandler, viewHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

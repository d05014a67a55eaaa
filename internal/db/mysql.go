// Package db opens the MySQL database that backs the user directory. The
// session store itself never touches MySQL; only the database-backed
// directory and the seed command do.
package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewMySQL returns a connected GORM DB instance. Directory lookups run on
// every login, so statements are prepared and cached.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect directory mysql: %w", err)
	}
	return db, nil
}

package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store wraps the gorm handle with the operations the bot needs.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := gdb.AutoMigrate(&User{}, &Order{}, &License{}, &Setting{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: gdb}, nil
}

// NewStore wraps an existing gorm handle.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

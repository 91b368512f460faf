package database

import (
	"log"
	"strings"

	"task-secretary-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite file at path and migrates the schema.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
func Open(path, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(ParseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}

// InitDB opens the database and exits the process when it cannot
func InitDB(path, logLevel string) *gorm.DB {
	db, err := Open(path, logLevel)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	log.Printf("Database %s connected and migrated", path)
	return db
}

func ParseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}

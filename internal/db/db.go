package db

import (
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Connect opens the database behind dsn. MySQL DSNs
// ("user:pass@tcp(host:port)/db") get the mysql driver; anything else is
// treated as a sqlite file path.
func Connect(dsn string) (*gorm.DB, error) {
	if strings.Contains(dsn, "@tcp(") || strings.Contains(dsn, "@unix(") {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

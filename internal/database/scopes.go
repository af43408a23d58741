package database

import (
	"strings"

	"gorm.io/gorm"
)

// Paginate returns a scope selecting page (1-based) of size rows.
func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if size < 1 {
			size = 1
		}
		return db.Offset((page - 1) * size).Limit(size)
	}
}

// NameContains filters rows whose name contains keyword, case-insensitively.
// The keyword is matched literally. An empty keyword matches everything.
func NameContains(keyword string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if keyword == "" {
			return db
		}
		return db.Where("name ILIKE ? ESCAPE '\\'", "%"+EscapeLike(keyword)+"%")
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

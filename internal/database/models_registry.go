package database

import "acervo/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.Community{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
	}
}

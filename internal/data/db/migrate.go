package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

// Models lists every table the service owns, nodes first.
func Models() []interface{} {
	return []interface{}{
		&pages.Node{},
		&pages.RichTextPage{},
		&pages.LinkPage{},
		&pages.FormPage{},
		&pages.FormEntry{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

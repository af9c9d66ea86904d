package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/data/repos/pages"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type NodeRepo = pages.NodeRepo
type PayloadRepo = pages.PayloadRepo
type FormEntryRepo = pages.FormEntryRepo

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return pages.NewNodeRepo(db, baseLog)
}
func NewPayloadRepo(db *gorm.DB, baseLog *logger.Logger) PayloadRepo {
	return pages.NewPayloadRepo(db, baseLog)
}
func NewFormEntryRepo(db *gorm.DB, baseLog *logger.Logger) FormEntryRepo {
	return pages.NewFormEntryRepo(db, baseLog)
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/data/repos"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type Repos struct {
	Nodes       repos.NodeRepo
	Payloads    repos.PayloadRepo
	FormEntries repos.FormEntryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Nodes:       repos.NewNodeRepo(db, log),
		Payloads:    repos.NewPayloadRepo(db, log),
		FormEntries: repos.NewFormEntryRepo(db, log),
	}
}

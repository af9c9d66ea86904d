package pages

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type FormEntryRepo interface {
	Create(dbc dbctx.Context, row *domain.FormEntry) error
	ListByNode(dbc dbctx.Context, nodeID uuid.UUID, limit int) ([]*domain.FormEntry, error)
	DeleteByNodes(dbc dbctx.Context, nodeIDs []uuid.UUID) error
}

type formEntryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFormEntryRepo(db *gorm.DB, baseLog *logger.Logger) FormEntryRepo {
	return &formEntryRepo{db: db, log: baseLog.With("repo", "FormEntryRepo")}
}

func (r *formEntryRepo) Create(dbc dbctx.Context, row *domain.FormEntry) error {
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *formEntryRepo) ListByNode(dbc dbctx.Context, nodeID uuid.UUID, limit int) ([]*domain.FormEntry, error) {
	var out []*domain.FormEntry
	q := dbc.DB(r.db).Where("node_id = ?", nodeID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *formEntryRepo) DeleteByNodes(dbc dbctx.Context, nodeIDs []uuid.UUID) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("node_id IN ?", nodeIDs).Delete(&domain.FormEntry{}).Error
}

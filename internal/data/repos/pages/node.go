package pages

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

// NodeRepo is the record store for tree nodes. Lookups return nil, nil
// when the row does not exist.
type NodeRepo interface {
	Create(dbc dbctx.Context, row *domain.Node) error
	Put(dbc dbctx.Context, row *domain.Node) error

	Get(dbc dbctx.Context, id uuid.UUID) (*domain.Node, error)
	QueryChildren(dbc dbctx.Context, parentID *uuid.UUID) ([]*domain.Node, error)
	QueryChildrenOf(dbc dbctx.Context, parentIDs []uuid.UUID) ([]*domain.Node, error)
	FindChildBySlug(dbc dbctx.Context, parentID *uuid.UUID, slug string) (*domain.Node, error)
	CountChildren(dbc dbctx.Context, parentID *uuid.UUID) (int64, error)

	UpdatePositions(dbc dbctx.Context, positions map[uuid.UUID]int) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	Delete(dbc dbctx.Context, ids []uuid.UUID) error
}

type nodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeRepo(db *gorm.DB, baseLog *logger.Logger) NodeRepo {
	return &nodeRepo{db: db, log: baseLog.With("repo", "NodeRepo")}
}

func scopeParent(q *gorm.DB, parentID *uuid.UUID) *gorm.DB {
	if parentID == nil {
		return q.Where("parent_id IS NULL")
	}
	return q.Where("parent_id = ?", *parentID)
}

func siblingOrder(q *gorm.DB) *gorm.DB {
	return q.Order("position ASC").Order("created_at ASC").Order("id ASC")
}

func (r *nodeRepo) Create(dbc dbctx.Context, row *domain.Node) error {
	if row == nil {
		return nil
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *nodeRepo) Put(dbc dbctx.Context, row *domain.Node) error {
	if row == nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return dbc.DB(r.db).Save(row).Error
}

func (r *nodeRepo) Get(dbc dbctx.Context, id uuid.UUID) (*domain.Node, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.Node
	err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *nodeRepo) QueryChildren(dbc dbctx.Context, parentID *uuid.UUID) ([]*domain.Node, error) {
	var out []*domain.Node
	q := siblingOrder(scopeParent(dbc.DB(r.db).Model(&domain.Node{}), parentID))
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) QueryChildrenOf(dbc dbctx.Context, parentIDs []uuid.UUID) ([]*domain.Node, error) {
	var out []*domain.Node
	if len(parentIDs) == 0 {
		return out, nil
	}
	q := dbc.DB(r.db).Where("parent_id IN ?", parentIDs).Order("parent_id ASC")
	if err := siblingOrder(q).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *nodeRepo) FindChildBySlug(dbc dbctx.Context, parentID *uuid.UUID, slug string) (*domain.Node, error) {
	var row domain.Node
	q := scopeParent(dbc.DB(r.db).Model(&domain.Node{}), parentID).Where("slug = ?", slug)
	err := q.Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *nodeRepo) CountChildren(dbc dbctx.Context, parentID *uuid.UUID) (int64, error) {
	var n int64
	err := scopeParent(dbc.DB(r.db).Model(&domain.Node{}), parentID).Count(&n).Error
	return n, err
}

func (r *nodeRepo) UpdatePositions(dbc dbctx.Context, positions map[uuid.UUID]int) error {
	if len(positions) == 0 {
		return nil
	}
	t := dbc.DB(r.db)
	now := time.Now().UTC()
	for id, pos := range positions {
		err := t.Model(&domain.Node{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"position": pos, "updated_at": now}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *nodeRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&domain.Node{}).Where("id = ?", id).Updates(updates).Error
}

func (r *nodeRepo) Delete(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&domain.Node{}).Error
}

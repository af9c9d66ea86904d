package pages

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

// PayloadRepo stores variant payloads. The concrete table is taken from
// the payload value, so one repo serves every registered variant.
type PayloadRepo interface {
	// Load fills dst with the row keyed by nodeID and reports whether it
	// existed.
	Load(dbc dbctx.Context, dst domain.Payload, nodeID uuid.UUID) (bool, error)
	Create(dbc dbctx.Context, p domain.Payload) error
	Put(dbc dbctx.Context, p domain.Payload) error
	Delete(dbc dbctx.Context, p domain.Payload) error
}

type payloadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPayloadRepo(db *gorm.DB, baseLog *logger.Logger) PayloadRepo {
	return &payloadRepo{db: db, log: baseLog.With("repo", "PayloadRepo")}
}

func (r *payloadRepo) Load(dbc dbctx.Context, dst domain.Payload, nodeID uuid.UUID) (bool, error) {
	if dst == nil || nodeID == uuid.Nil {
		return false, nil
	}
	err := dbc.DB(r.db).Where("node_id = ?", nodeID).Take(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *payloadRepo) Create(dbc dbctx.Context, p domain.Payload) error {
	if p == nil {
		return nil
	}
	if p.PageNodeID() == uuid.Nil {
		return errors.New("payload has no node id")
	}
	return dbc.DB(r.db).Create(p).Error
}

func (r *payloadRepo) Put(dbc dbctx.Context, p domain.Payload) error {
	if p == nil {
		return nil
	}
	if p.PageNodeID() == uuid.Nil {
		return errors.New("payload has no node id")
	}
	return dbc.DB(r.db).Save(p).Error
}

func (r *payloadRepo) Delete(dbc dbctx.Context, p domain.Payload) error {
	if p == nil || p.PageNodeID() == uuid.Nil {
		return nil
	}
	return dbc.DB(r.db).Where("node_id = ?", p.PageNodeID()).Delete(p).Error
}

package tree

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/observability"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/locker"
)

const rootsKey = "tree:roots"

var errScopeMoved = errors.New("lock scope changed while waiting")

// subtreeKey names the top-level subtree node lives in.
func (t *Tree) subtreeKey(dbc dbctx.Context, node *pages.Node) (string, error) {
	chain, err := t.ancestors(dbc, node)
	if err != nil {
		return "", err
	}
	top := node
	if len(chain) > 0 {
		top = chain[0]
	}
	return "tree:" + top.ID.String(), nil
}

// siblingKey guards the child list of parentID.
func (t *Tree) siblingKey(dbc dbctx.Context, parentID *uuid.UUID) (string, error) {
	if parentID == nil {
		return rootsKey, nil
	}
	parent, err := t.nodes.Get(dbc, *parentID)
	if err != nil {
		return "", err
	}
	if parent == nil {
		return "", fmt.Errorf("%w: parent %w: %s", pages.ErrInvalidPlacement, pages.ErrNotFound, *parentID)
	}
	return t.subtreeKey(dbc, parent)
}

type scopeFunc func(dbc dbctx.Context) ([]string, error)

// mutate runs fn with the subtrees named by scope locked and inside one
// transaction. The scope is derived again inside the transaction; if a
// concurrent move changed it, the attempt is retried until the deadline.
func (t *Tree) mutate(ctx context.Context, op string, scope scopeFunc, fn func(dbc dbctx.Context) error) (err error) {
	ctx, span := tracer.Start(ctx, "tree."+op)
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			if errors.Is(err, pages.ErrBusy) {
				outcome = "busy"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		observability.Current().ObserveTreeMutation(op, outcome, time.Since(start))
	}()

	deadline := time.Now().Add(t.cfg.LockTimeout)
	for attempt := 1; ; attempt++ {
		keys, err := scope(dbctx.Context{Ctx: ctx})
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.StringSlice("pagetree.lock_keys", keys), attribute.Int("pagetree.attempt", attempt))

		wait := time.Until(deadline)
		if wait <= 0 {
			return fmt.Errorf("%w: %s waited %s", pages.ErrBusy, op, t.cfg.LockTimeout)
		}
		release, err := t.locks.Acquire(ctx, keys, wait)
		if errors.Is(err, locker.ErrTimeout) {
			t.log.Warn("Tree lock wait timed out", "op", op, "keys", keys, "timeout", t.cfg.LockTimeout.String())
			return fmt.Errorf("%w: %s waited %s", pages.ErrBusy, op, t.cfg.LockTimeout)
		}
		if err != nil {
			return err
		}

		err = t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			now, err := scope(dbc)
			if err != nil {
				return err
			}
			for _, k := range now {
				if !slices.Contains(keys, k) {
					return errScopeMoved
				}
			}
			return fn(dbc)
		})
		release()
		if errors.Is(err, errScopeMoved) {
			t.log.Debug("Tree lock scope moved, retrying", "op", op, "attempt", attempt)
			continue
		}
		return err
	}
}

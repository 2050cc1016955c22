// Package directory fetches the member roster from wherever it lives: the
// backend's own database or, for clients, the REST API.
package directory

import (
	"context"

	"golang.org/x/sync/singleflight"

	"alcyxob/gym-membership/internal/domain"
)

// Directory returns the full member roster.
type Directory interface {
	ListMembers(ctx context.Context) ([]domain.Member, error)
}

// Deduped collapses concurrent ListMembers calls into one fetch. Callers
// that arrive while a fetch is in flight share its result; nothing is kept
// once it completes, so every later call sees fresh data. The shared fetch
// is detached from the first caller's cancellation; each caller stops
// waiting when its own context is done.
type Deduped struct {
	next  Directory
	group singleflight.Group
}

func NewDeduped(next Directory) *Deduped {
	return &Deduped{next: next}
}

func (d *Deduped) ListMembers(ctx context.Context) ([]domain.Member, error) {
	ch := d.group.DoChan("members", func() (interface{}, error) {
		return d.next.ListMembers(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	shared := res.Val.([]domain.Member)
	// Each caller gets its own slice so sorting one does not reorder another.
	out := make([]domain.Member, len(shared))
	copy(out, shared)
	return out, nil
}

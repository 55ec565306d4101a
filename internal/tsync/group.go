package tsync

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// GroupWithContext is like errgroup.WithContext but collects every error
// instead of keeping only the first one. The context is cancelled once all
// started functions have returned.
func GroupWithContext(ctx context.Context) (*Group, context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{cancel: cancel}, ctx
}

type Group struct {
	sync.Mutex
	errors []error
	eg     errgroup.Group
	cancel context.CancelFunc
}

func (g *Group) SetLimit(n int) {
	g.eg.SetLimit(n)
}

func (g *Group) Go(fn func() error) {
	g.eg.Go(func() error {
		if err := fn(); err != nil {
			g.Lock()
			defer g.Unlock()
			g.errors = append(g.errors, err)
		}
		return nil
	})
}

func (g *Group) Wait() error {
	_ = g.eg.Wait()
	if g.cancel != nil {
		g.cancel()
	}
	return errors.Join(g.errors...)
}

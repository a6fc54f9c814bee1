package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-restaurant-ops/internal/domain"
)

// OrderChange is a committed write to an order. Before is nil for a creation.
type OrderChange struct {
	Before *domain.Order
	After  *domain.Order
}

// Created reports whether the change is an order creation.
func (c OrderChange) Created() bool { return c.Before == nil && c.After != nil }

// StatusChanged reports whether the status differs between Before and After.
func (c OrderChange) StatusChanged() bool {
	var before, after domain.OrderStatus
	if c.Before != nil {
		before = c.Before.Status
	}
	if c.After != nil {
		after = c.After.Status
	}
	return before != after
}

// RestaurantID returns the restaurant of the change, preferring After.
func (c OrderChange) RestaurantID() string {
	if c.After != nil && c.After.RestaurantID != "" {
		return c.After.RestaurantID
	}
	if c.Before != nil {
		return c.Before.RestaurantID
	}
	return ""
}

// OrderHandler reacts to committed order changes. Handlers own their error
// handling; nothing they do reaches the writer.
type OrderHandler interface {
	HandleOrderChange(ctx context.Context, change OrderChange)
}

// HandlerFunc adapts a function to OrderHandler.
type HandlerFunc func(ctx context.Context, change OrderChange)

// HandleOrderChange implements OrderHandler.
func (f HandlerFunc) HandleOrderChange(ctx context.Context, change OrderChange) { f(ctx, change) }

// Dispatcher fans committed order changes out to subscribed handlers, each
// in its own goroutine. At most Workers handlers run at once.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []OrderHandler
	sem      chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher returns a dispatcher running at most workers handlers
// concurrently (minimum 1).
func NewDispatcher(workers int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{sem: make(chan struct{}, workers)}
}

// Subscribe registers h for every future change.
func (d *Dispatcher) Subscribe(h OrderHandler) {
	d.mu.Lock()
	d.handlers = append(d.handlers, h)
	d.mu.Unlock()
}

// Emit schedules delivery of change and returns immediately. The handlers'
// context is detached from ctx's cancellation so a finished request does not
// abort its side effects. A nil dispatcher drops the change.
func (d *Dispatcher) Emit(ctx context.Context, change OrderChange) {
	if d == nil {
		return
	}
	d.mu.RLock()
	hs := make([]OrderHandler, len(d.handlers))
	copy(hs, d.handlers)
	d.mu.RUnlock()

	bg := context.WithoutCancel(ctx)
	for _, h := range hs {
		d.wg.Add(1)
		go d.run(bg, h, change)
	}
}

func (d *Dispatcher) run(ctx context.Context, h OrderHandler, change OrderChange) {
	defer d.wg.Done()
	d.sem <- struct{}{}
	defer func() { <-d.sem }()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("restaurant_id", change.RestaurantID()).
				Msg("order change handler panicked")
		}
	}()
	h.HandleOrderChange(ctx, change)
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

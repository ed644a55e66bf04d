package payments

import (
	"context"
	"log"
	"time"
)

// Sweeper periodically cancels abandoned checkouts. A payer who closes the
// tab or declines on the gateway never calls back; their intents sit in
// created/initiated until this sweep moves them to cancelled.
type Sweeper struct {
	store    *Store
	ttl      time.Duration
	interval time.Duration
}

func NewSweeper(store *Store, ttl, interval time.Duration) *Sweeper {
	return &Sweeper{store: store, ttl: ttl, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			count, err := s.store.ExpireStale(ctx, s.ttl)
			if err != nil {
				log.Printf("intent expiry sweep failed: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("expired %d stale payment intents", count)
			}
		case <-ctx.Done():
			return
		}
	}
}

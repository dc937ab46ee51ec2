/*
scheduler.go - Background leave-sync sweeper

PURPOSE:
  Periodically re-runs attendance reconciliation for approved leaves that
  are still flagged needs-sync (a prior sync attempt failed partway, or
  the process crashed between approval and sync).

DESIGN:
  - Runs a background goroutine with configurable sweep interval
  - Picks up leaves the LeaveService flagged but could not complete
  - Each sweep attempt is recorded as a sync run for audit and UI display
  - Sync is idempotent, so re-sweeping an already-materialized leave is
    harmless

CONFIGURATION:
  - SweepInterval: How often to sweep (default: 1 minute)
  - Enabled: Whether the sweeper is active (default: true)

USAGE:
  sweeper := NewSyncSweeper(leaves)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - hr/leave.go: SyncToCompletion (the retry loop)
  - hr/reconcile.go: The per-day sync itself
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/hr-engine/hr"
)

// SyncSweeper re-drives reconciliation for leaves stuck in needs-sync.
type SyncSweeper struct {
	Leaves        *hr.LeaveService
	SweepInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSyncSweeper creates a sweeper over the given leave service.
func NewSyncSweeper(leaves *hr.LeaveService) *SyncSweeper {
	return &SyncSweeper{
		Leaves:        leaves,
		SweepInterval: time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the sweeper.
func (sw *SyncSweeper) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.Enabled {
		log.Println("[Sweeper] Disabled, not starting")
		return
	}

	sw.ticker = time.NewTicker(sw.SweepInterval)
	sw.wg.Add(1)

	go sw.run()

	log.Printf("[Sweeper] Started with sweep interval: %v", sw.SweepInterval)
}

// Stop stops the sweeper.
func (sw *SyncSweeper) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.ticker != nil {
		sw.ticker.Stop()
		close(sw.stop)
		sw.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (sw *SyncSweeper) run() {
	defer sw.wg.Done()

	// Run immediately on start to pick up leaves stranded by a crash
	sw.sweep()

	for {
		select {
		case <-sw.ticker.C:
			sw.sweep()
		case <-sw.stop:
			return
		}
	}
}

func (sw *SyncSweeper) sweep() {
	ctx := context.Background()

	pending, err := sw.Leaves.Runs.LeavesNeedingSync(ctx)
	if err != nil {
		log.Printf("[Sweeper] Error listing leaves needing sync: %v", err)
		return
	}
	if len(pending) == 0 {
		return
	}

	log.Printf("[Sweeper] Found %d leave(s) needing sync", len(pending))

	synced := 0
	for _, leave := range pending {
		if err := sw.Leaves.SyncToCompletion(ctx, leave); err != nil {
			log.Printf("[Sweeper] Sync still failing for leave %s: %v", leave.ID, err)
			continue
		}
		if err := sw.Leaves.Leaves.SetNeedsSync(ctx, leave.ID, false); err != nil {
			log.Printf("[Sweeper] Failed to clear sync flag for leave %s: %v", leave.ID, err)
			continue
		}
		synced++
	}

	if synced > 0 {
		log.Printf("[Sweeper] Re-synced %d leave(s)", synced)
	}
}

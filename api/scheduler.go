/*
scheduler.go - Automated background scheduling

PURPOSE:
  Periodically runs an auto-schedule pass so new backlog units pick up
  forecast slots without an operator pressing the button.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Each tick is one full greedy pass over the backlog
  - A pass that placed or skipped nothing is silent
  - Stop() blocks until the goroutine exits

CONFIGURATION:
  - CheckInterval: How often to run (default: 15 minutes)
  - Enabled: Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewAutoScheduler(floor)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunAutoSchedule endpoint (manual trigger)
  - production/autoschedule.go: The placement pass itself
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/pumpline/production"
)

// AutoScheduler runs periodic auto-schedule passes in the background.
type AutoScheduler struct {
	Floor         *production.Floor
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAutoScheduler creates a new scheduler over the floor.
func NewAutoScheduler(floor *production.Floor) *AutoScheduler {
	return &AutoScheduler{
		Floor:         floor,
		CheckInterval: 15 * time.Minute,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (as *AutoScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		log.Println("[AutoSchedule] Disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)

	go as.run()

	log.Printf("[AutoSchedule] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler.
func (as *AutoScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		log.Println("[AutoSchedule] Stopped")
	}
}

// RunNow triggers an immediate pass (for testing/admin).
func (as *AutoScheduler) RunNow() {
	as.runPass()
}

func (as *AutoScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.runPass()

	for {
		select {
		case <-as.ticker.C:
			as.runPass()
		case <-as.stop:
			return
		}
	}
}

func (as *AutoScheduler) runPass() {
	result := as.Floor.AutoSchedule(context.Background())
	if result.Scheduled == 0 && result.Skipped == 0 {
		return
	}
	log.Printf("[AutoSchedule] Pass complete: scheduled=%d skipped=%d",
		result.Scheduled, result.Skipped)
}

// Package catalog provides the model work-content catalog: per-model
// standard lead times and labor hours consumed by the production engine.
// Read-only reference data; the engine sees it through production.Catalog.
package catalog

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/production"
)

// Entry pairs a model key with its work content.
type Entry struct {
	Model   string
	Content production.WorkContent
}

// Static is an in-memory catalog keyed by model string.
type Static struct {
	mu      sync.RWMutex
	entries map[string]production.WorkContent
}

// Compile-time check that Static implements production.Catalog
var _ production.Catalog = (*Static)(nil)

// New creates an empty catalog.
func New() *Static {
	return &Static{entries: make(map[string]production.WorkContent)}
}

// WorkContent looks up a model's standard work content.
func (c *Static) WorkContent(model string) (production.WorkContent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	wc, ok := c.entries[model]
	return wc, ok
}

// Put registers or replaces a model entry.
func (c *Static) Put(model string, wc production.WorkContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[model] = wc
}

// Entries returns all entries ordered by model key.
func (c *Static) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for model, wc := range c.entries {
		entries = append(entries, Entry{Model: model, Content: wc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Model < entries[j].Model })
	return entries
}

// days is a shorthand for building seed data.
func days(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Standard returns the catalog seeded with the standard pump line.
// Lead times are in days; fabrication/assembly/ship hours, where listed,
// are the measured labor content behind those lead times.
func Standard() *Static {
	c := New()

	c.Put("DD-6 SAFE", production.WorkContent{
		FabricationDays: days(1.5),
		PowderCoatDays:  days(2),
		AssemblyDays:    days(1),
		ShipDays:        days(0.25),
	})
	c.Put("DD-8 SAFE", production.WorkContent{
		FabricationDays: days(2),
		PowderCoatDays:  days(2),
		AssemblyDays:    days(1.5),
		ShipDays:        days(0.25),
	})
	c.Put("DD-10 SAFE", production.WorkContent{
		FabricationDays: days(2.5),
		PowderCoatDays:  days(2),
		AssemblyDays:    days(1.5),
		ShipDays:        days(0.5),
	})
	c.Put("HV-130", production.WorkContent{
		FabricationDays:  days(3),
		PowderCoatDays:   days(3),
		AssemblyDays:     days(2),
		ShipDays:         days(0.5),
		FabricationHours: hoursPtr(26),
		AssemblyHours:    hoursPtr(18),
	})
	c.Put("HV-260", production.WorkContent{
		FabricationDays:  days(4),
		PowderCoatDays:   days(3),
		AssemblyDays:     days(3),
		ShipDays:         days(1),
		FabricationHours: hoursPtr(34),
		AssemblyHours:    hoursPtr(24),
		ShipHours:        hoursPtr(8),
	})
	c.Put("SL-50", production.WorkContent{
		FabricationDays: days(1),
		PowderCoatDays:  days(2),
		AssemblyDays:    days(0.5),
		ShipDays:        days(0.25),
	})

	return c
}

func hoursPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

package catalog_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/catalog"
	"github.com/warp/pumpline/production"
)

func TestStandard_KnownModel(t *testing.T) {
	cat := catalog.Standard()

	wc, ok := cat.WorkContent("DD-6 SAFE")
	if !ok {
		t.Fatal("expected DD-6 SAFE in the standard catalog")
	}
	if wc.FabricationDays.String() != "1.5" {
		t.Errorf("expected fabrication 1.5 days, got %s", wc.FabricationDays)
	}
	if wc.PowderCoatDays.String() != "2" {
		t.Errorf("expected powder coat 2 days, got %s", wc.PowderCoatDays)
	}
	if wc.ShipDays.String() != "0.25" {
		t.Errorf("expected ship 0.25 days, got %s", wc.ShipDays)
	}
}

func TestStandard_UnknownModel(t *testing.T) {
	cat := catalog.Standard()
	if _, ok := cat.WorkContent("XX-404"); ok {
		t.Error("unknown model must report not found")
	}
}

func TestPut_OverridesEntry(t *testing.T) {
	cat := catalog.New()
	cat.Put("CUSTOM-1", production.WorkContent{
		FabricationDays: decimal.NewFromInt(3),
	})

	wc, ok := cat.WorkContent("CUSTOM-1")
	if !ok || wc.FabricationDays.String() != "3" {
		t.Errorf("expected stored entry back, got %v ok=%v", wc, ok)
	}
}

func TestEntries_SortedByModel(t *testing.T) {
	cat := catalog.Standard()
	entries := cat.Entries()
	if len(entries) == 0 {
		t.Fatal("standard catalog must not be empty")
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Model > entries[i].Model {
			t.Errorf("entries out of order: %s before %s", entries[i-1].Model, entries[i].Model)
		}
	}
}

/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements production.Repository and production.SettingsStore using
  SQLite. The engine treats persistence as a fire-and-forget side effect;
  the store's job is to make the current projected state durable across
  restarts, not to hold history.

INTERFACES IMPLEMENTED:
  production.Repository:    Unit collection persistence
  production.SettingsStore: Staffing, vendor lanes, WIP limits, lock date

KEY TABLES:
  units:                One row per pump unit (current state only)
  department_staffing:  One row per staffed department
  vendor_lanes:         Powder-coat vendor weekly limits
  wip_limits:           Per-stage active caps
  settings:             Key/value scalars (lock date)

PRECISION:
  Decimal quantities (man-hours, efficiency, headcount) are stored as
  TEXT and re-parsed through shopspring/decimal, never through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/pumpline.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  floor := production.NewFloor(catalog.Standard(), store, store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - production/repository.go: Interface definitions
  - production/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/pumpline/production"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ production.Repository    = (*Store)(nil)
	_ production.SettingsStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Units (current projected state, one row per pump)
	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		serial TEXT NOT NULL UNIQUE,
		model TEXT NOT NULL,
		customer TEXT,
		po_number TEXT,
		stage TEXT NOT NULL,
		priority INTEGER NOT NULL DEFAULT 2,
		due_date TEXT,
		forecast_start TEXT,
		forecast_end TEXT,
		paused BOOLEAN NOT NULL DEFAULT FALSE,
		paused_at TEXT,
		paused_stage TEXT,
		pause_reason TEXT,
		total_paused_days INTEGER NOT NULL DEFAULT 0,
		last_update TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_units_stage ON units(stage);
	CREATE INDEX IF NOT EXISTS idx_units_forecast_start ON units(forecast_start)
		WHERE forecast_start IS NOT NULL;

	-- Department staffing (decimals stored as TEXT)
	CREATE TABLE IF NOT EXISTS department_staffing (
		department TEXT PRIMARY KEY,
		employee_count TEXT NOT NULL,
		efficiency TEXT NOT NULL,
		daily_man_hours TEXT NOT NULL
	);

	-- Powder-coat vendor lanes
	CREATE TABLE IF NOT EXISTS vendor_lanes (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		max_pumps_per_week INTEGER NOT NULL DEFAULT 0
	);

	-- Per-stage WIP limits (absent row = unlimited)
	CREATE TABLE IF NOT EXISTS wip_limits (
		stage TEXT PRIMARY KEY,
		max_active INTEGER NOT NULL
	);

	-- Scalar settings (lock date)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UNIT REPOSITORY (production.Repository interface)
// =============================================================================

const unitColumns = `id, serial, model, customer, po_number, stage, priority, due_date,
	forecast_start, forecast_end, paused, paused_at, paused_stage, pause_reason,
	total_paused_days, last_update`

// Load returns every unit in the store, ordered by serial.
func (s *Store) Load(ctx context.Context) ([]production.Pump, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+unitColumns+" FROM units ORDER BY serial ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []production.Pump
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// ReplaceAll swaps the entire collection atomically.
func (s *Store) ReplaceAll(ctx context.Context, units []production.Pump) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM units"); err != nil {
		return fmt.Errorf("failed to clear units: %w", err)
	}
	for _, u := range units {
		if err := upsertUnit(ctx, tx, u); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// UpsertMany inserts or overwrites units by ID.
func (s *Store) UpsertMany(ctx context.Context, units []production.Pump) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, u := range units {
		if err := upsertUnit(ctx, tx, u); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func upsertUnit(ctx context.Context, tx *sql.Tx, u production.Pump) error {
	query := `
		INSERT INTO units
		(id, serial, model, customer, po_number, stage, priority, due_date,
		 forecast_start, forecast_end, paused, paused_at, paused_stage, pause_reason,
		 total_paused_days, last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			serial = excluded.serial,
			model = excluded.model,
			customer = excluded.customer,
			po_number = excluded.po_number,
			stage = excluded.stage,
			priority = excluded.priority,
			due_date = excluded.due_date,
			forecast_start = excluded.forecast_start,
			forecast_end = excluded.forecast_end,
			paused = excluded.paused,
			paused_at = excluded.paused_at,
			paused_stage = excluded.paused_stage,
			pause_reason = excluded.pause_reason,
			total_paused_days = excluded.total_paused_days,
			last_update = excluded.last_update
	`

	_, err := tx.ExecContext(ctx, query,
		string(u.ID),
		u.Serial,
		u.Model,
		u.Customer,
		u.PONumber,
		string(u.Stage),
		int(u.Priority),
		nullString(u.DueDate),
		nullTime(u.ForecastStart),
		nullTime(u.ForecastEnd),
		u.Paused,
		nullTime(u.PausedAt),
		nullString(string(u.PausedStage)),
		nullString(string(u.PauseReason)),
		u.TotalPausedDays,
		u.LastUpdate.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert unit %s: %w", u.ID, err)
	}
	return nil
}

// Update applies a partial patch to one unit. A missing row is not an
// error: the engine's persistence dispatch is fire-and-forget.
func (s *Store) Update(ctx context.Context, id production.UnitID, patch production.PumpPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sets []string
	var args []any

	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Model != nil {
		set("model", *patch.Model)
	}
	if patch.Customer != nil {
		set("customer", *patch.Customer)
	}
	if patch.PONumber != nil {
		set("po_number", *patch.PONumber)
	}
	if patch.Stage != nil {
		set("stage", string(*patch.Stage))
	}
	if patch.Priority != nil {
		set("priority", int(*patch.Priority))
	}
	if patch.DueDate != nil {
		set("due_date", nullString(*patch.DueDate))
	}
	if patch.ClearForecast {
		set("forecast_start", nil)
		set("forecast_end", nil)
	} else {
		if patch.ForecastStart != nil {
			set("forecast_start", patch.ForecastStart.UTC().Format(time.RFC3339))
		}
		if patch.ForecastEnd != nil {
			set("forecast_end", patch.ForecastEnd.UTC().Format(time.RFC3339))
		}
	}
	if patch.Paused != nil {
		set("paused", *patch.Paused)
	}
	if patch.ClearPausedAt {
		set("paused_at", nil)
	} else if patch.PausedAt != nil {
		set("paused_at", patch.PausedAt.UTC().Format(time.RFC3339))
	}
	if patch.PausedStage != nil {
		set("paused_stage", string(*patch.PausedStage))
	}
	if patch.PauseReason != nil {
		set("pause_reason", string(*patch.PauseReason))
	}
	if patch.TotalPausedDays != nil {
		set("total_paused_days", *patch.TotalPausedDays)
	}
	if patch.LastUpdate != nil {
		set("last_update", patch.LastUpdate.UTC().Format(time.RFC3339))
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, string(id))
	query := "UPDATE units SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update unit %s: %w", id, err)
	}
	return nil
}

func scanUnit(rows *sql.Rows) (production.Pump, error) {
	var (
		u             production.Pump
		id            string
		stage         string
		priority      int
		customer      sql.NullString
		poNumber      sql.NullString
		dueDate       sql.NullString
		forecastStart sql.NullString
		forecastEnd   sql.NullString
		pausedAt      sql.NullString
		pausedStage   sql.NullString
		pauseReason   sql.NullString
		lastUpdate    string
	)

	err := rows.Scan(
		&id, &u.Serial, &u.Model, &customer, &poNumber, &stage, &priority,
		&dueDate, &forecastStart, &forecastEnd, &u.Paused, &pausedAt,
		&pausedStage, &pauseReason, &u.TotalPausedDays, &lastUpdate,
	)
	if err != nil {
		return u, fmt.Errorf("failed to scan unit: %w", err)
	}

	u.ID = production.UnitID(id)
	u.Stage = production.Stage(stage)
	u.Priority = production.Priority(priority)
	u.Customer = customer.String
	u.PONumber = poNumber.String
	u.DueDate = dueDate.String
	u.ForecastStart = parseNullTime(forecastStart)
	u.ForecastEnd = parseNullTime(forecastEnd)
	u.PausedAt = parseNullTime(pausedAt)
	u.PausedStage = production.Stage(pausedStage.String)
	u.PauseReason = production.PauseReason(pauseReason.String)
	u.LastUpdate, _ = time.Parse(time.RFC3339, lastUpdate)
	return u, nil
}

// =============================================================================
// SETTINGS STORE (production.SettingsStore interface)
// =============================================================================

// LoadCapacity assembles the capacity config from staffing and vendor rows.
// Departments with no stored row keep their defaults.
func (s *Store) LoadCapacity(ctx context.Context) (production.CapacityConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := production.DefaultCapacityConfig()

	rows, err := s.db.QueryContext(ctx,
		"SELECT department, employee_count, efficiency, daily_man_hours FROM department_staffing")
	if err != nil {
		return cfg, fmt.Errorf("failed to query staffing: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dept, count, eff, daily string
		if err := rows.Scan(&dept, &count, &eff, &daily); err != nil {
			return cfg, fmt.Errorf("failed to scan staffing: %w", err)
		}
		cfg.Staffing[production.Department(dept)] = production.Staffing{
			EmployeeCount: parseDecimal(count),
			Efficiency:    parseDecimal(eff),
			DailyManHours: parseDecimal(daily),
		}
	}
	if err := rows.Err(); err != nil {
		return cfg, err
	}

	lanes, err := s.db.QueryContext(ctx,
		"SELECT id, name, max_pumps_per_week FROM vendor_lanes ORDER BY name ASC")
	if err != nil {
		return cfg, fmt.Errorf("failed to query vendor lanes: %w", err)
	}
	defer lanes.Close()

	cfg.Vendors = nil
	for lanes.Next() {
		var v production.VendorLane
		if err := lanes.Scan(&v.ID, &v.Name, &v.MaxPumpsPerWeek); err != nil {
			return cfg, fmt.Errorf("failed to scan vendor lane: %w", err)
		}
		cfg.Vendors = append(cfg.Vendors, v)
	}
	return cfg, lanes.Err()
}

// SaveStaffing upserts one department's staffing row.
func (s *Store) SaveStaffing(ctx context.Context, dept production.Department, st production.Staffing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO department_staffing (department, employee_count, efficiency, daily_man_hours)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(department) DO UPDATE SET
			employee_count = excluded.employee_count,
			efficiency = excluded.efficiency,
			daily_man_hours = excluded.daily_man_hours
	`
	_, err := s.db.ExecContext(ctx, query,
		string(dept),
		st.EmployeeCount.String(),
		st.Efficiency.String(),
		st.DailyManHours.String(),
	)
	return err
}

// SaveVendors replaces the vendor lane set.
func (s *Store) SaveVendors(ctx context.Context, lanes []production.VendorLane) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vendor_lanes"); err != nil {
		return err
	}
	for _, v := range lanes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO vendor_lanes (id, name, max_pumps_per_week) VALUES (?, ?, ?)",
			v.ID, v.Name, v.MaxPumpsPerWeek)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadWIPLimits returns the configured per-stage limits.
func (s *Store) LoadWIPLimits(ctx context.Context) (production.WIPLimits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT stage, max_active FROM wip_limits")
	if err != nil {
		return nil, fmt.Errorf("failed to query wip limits: %w", err)
	}
	defer rows.Close()

	limits := make(production.WIPLimits)
	for rows.Next() {
		var stage string
		var maxActive int
		if err := rows.Scan(&stage, &maxActive); err != nil {
			return nil, fmt.Errorf("failed to scan wip limit: %w", err)
		}
		limits[production.Stage(stage)] = maxActive
	}
	return limits, rows.Err()
}

// SaveWIPLimits replaces the limit set.
func (s *Store) SaveWIPLimits(ctx context.Context, limits production.WIPLimits) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM wip_limits"); err != nil {
		return err
	}
	for stage, maxActive := range limits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO wip_limits (stage, max_active) VALUES (?, ?)",
			string(stage), maxActive)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

const lockDateKey = "lock_date"

// LoadLockDate returns the scheduling lock date, nil when unset.
func (s *Store) LoadLockDate(ctx context.Context) (*time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM settings WHERE key = ?", lockDateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}

// SaveLockDate persists the lock date. Nil clears it.
func (s *Store) SaveLockDate(ctx context.Context, lock *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if lock == nil {
		_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", lockDateKey)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lockDateKey, lock.UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

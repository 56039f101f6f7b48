package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"gemstock-api/internal/model"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver - no CGO required
)

// skuSequenceName is the single counter row shared by the whole SKU space.
// The counter is global, not per-prefix: two concurrent creations never
// receive the same suffix even when every other SKU fragment is identical.
const skuSequenceName = "SKU"

// SQLiteStore implements Store using SQLite.
// Thread-safe with WAL mode; the mutex serializes writers on top of the
// single-connection pool SQLite requires.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	// SQLite only supports 1 writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSQLiteTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Printf("[SQLiteStore] Initialized with database: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func createSQLiteTables(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS inventory_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sku TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		shape TEXT NOT NULL DEFAULT '',
		stock_location TEXT NOT NULL DEFAULT '',
		category_code TEXT NOT NULL,
		material_code TEXT NOT NULL,
		color_code TEXT NOT NULL,
		weight_value TEXT NOT NULL,
		weight_unit TEXT NOT NULL,
		pricing_mode TEXT NOT NULL,
		rate_per_unit TEXT NOT NULL DEFAULT '0',
		flat_price TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_inventory_sku ON inventory_items(sku);
	CREATE TABLE IF NOT EXISTS sku_sequences (
		name TEXT PRIMARY KEY,
		last_no INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS print_jobs (
		id TEXT PRIMARY KEY,
		owner_user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		format_snapshot TEXT NOT NULL DEFAULT '{}',
		total_items INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_print_jobs_owner ON print_jobs(owner_user_id);
	CREATE TABLE IF NOT EXISTS print_job_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT NOT NULL REFERENCES print_jobs(id) ON DELETE CASCADE,
		sku TEXT NOT NULL,
		price_amount TEXT NOT NULL,
		encoded_string TEXT NOT NULL,
		checksum_digit INTEGER NOT NULL,
		method TEXT NOT NULL,
		version INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_print_job_lines_job ON print_job_lines(job_id);
	`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	_, err := db.Exec(`INSERT OR IGNORE INTO sku_sequences (name, last_no) VALUES (?, 0)`, skuSequenceName)
	return err
}

// nextSKUSuffix increments and returns the global SKU counter inside tx.
// Read-then-update on the single counter row; the caller's transaction
// either commits the new counter value together with the inventory row or
// rolls both back, so a rolled-back suffix is simply reused later.
func nextSKUSuffix(ctx context.Context, tx *sql.Tx) (int64, error) {
	var lastNo int64
	err := tx.QueryRowContext(ctx, `SELECT last_no FROM sku_sequences WHERE name = ?`, skuSequenceName).Scan(&lastNo)
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence %q: %w", skuSequenceName, err)
	}

	newNo := lastNo + 1
	if _, err := tx.ExecContext(ctx, `UPDATE sku_sequences SET last_no = ? WHERE name = ?`, newNo, skuSequenceName); err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", skuSequenceName, err)
	}
	return newNo, nil
}

// CreateItem inserts the item and assigns its SKU in one transaction.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *model.InventoryItem, skuPrefix string, padding int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSKUAllocationFailed, err)
	}
	defer tx.Rollback()

	suffix, err := nextSKUSuffix(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSKUAllocationFailed, err)
	}

	sku := fmt.Sprintf("%s%0*d", skuPrefix, padding, suffix)
	now := time.Now().UTC()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO inventory_items
			(sku, name, shape, stock_location, category_code, material_code, color_code,
			 weight_value, weight_unit, pricing_mode, rate_per_unit, flat_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sku, item.Name, item.Shape, item.StockLocation,
		item.CategoryCode, item.MaterialCode, item.ColorCode,
		item.WeightValue.String(), item.WeightUnit, string(item.PricingMode),
		item.RatePerUnit.String(), item.FlatPrice.String(),
		now.Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("failed to insert inventory item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSKUAllocationFailed, err)
	}

	item.SKU = sku
	item.CreatedAt = now
	if id, err := res.LastInsertId(); err == nil {
		item.ID = id
	}
	return sku, nil
}

const inventoryColumns = `id, sku, name, shape, stock_location, category_code, material_code,
	color_code, weight_value, weight_unit, pricing_mode, rate_per_unit, flat_price, created_at`

func scanInventoryItem(row *sql.Row) (*model.InventoryItem, error) {
	var it model.InventoryItem
	var weight, rate, flat, mode, createdAt string

	err := row.Scan(&it.ID, &it.SKU, &it.Name, &it.Shape, &it.StockLocation,
		&it.CategoryCode, &it.MaterialCode, &it.ColorCode,
		&weight, &it.WeightUnit, &mode, &rate, &flat, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan inventory item: %w", err)
	}

	if it.WeightValue, err = decimal.NewFromString(weight); err != nil {
		return nil, fmt.Errorf("bad weight_value %q: %w", weight, err)
	}
	if it.RatePerUnit, err = decimal.NewFromString(rate); err != nil {
		return nil, fmt.Errorf("bad rate_per_unit %q: %w", rate, err)
	}
	if it.FlatPrice, err = decimal.NewFromString(flat); err != nil {
		return nil, fmt.Errorf("bad flat_price %q: %w", flat, err)
	}
	it.PricingMode = model.PricingMode(mode)
	it.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &it, nil
}

// GetItemByID retrieves an item by row ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetItemByID(ctx context.Context, id int64) (*model.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = ?`, id)
	return scanInventoryItem(row)
}

// GetItemBySKU retrieves an item by SKU. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE sku = ?`, sku)
	return scanInventoryItem(row)
}

// UpdateItemPricing changes the pricing fields of an existing item.
func (s *SQLiteStore) UpdateItemPricing(ctx context.Context, sku string, ratePerUnit, flatPrice decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory_items SET rate_per_unit = ?, flat_price = ? WHERE sku = ?`,
		ratePerUnit.String(), flatPrice.String(), sku)
	if err != nil {
		return fmt.Errorf("failed to update pricing for %s: %w", sku, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("no inventory item with sku %s", sku)
	}
	return nil
}

// CreateJob persists the job and all of its lines in a single transaction.
func (s *SQLiteStore) CreateJob(ctx context.Context, job *model.PrintJob, lines []model.PrintJobLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO print_jobs (id, owner_user_id, created_at, format_snapshot, total_items)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID, job.OwnerUserID, job.CreatedAt.UTC().Format(time.RFC3339Nano),
		job.FormatSnapshot, job.TotalItems)
	if err != nil {
		return fmt.Errorf("failed to insert print job: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO print_job_lines (job_id, sku, price_amount, encoded_string, checksum_digit, method, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare line insert: %w", err)
	}
	defer stmt.Close()

	for i := range lines {
		_, err := stmt.ExecContext(ctx, job.ID, lines[i].SKU,
			lines[i].PriceAmount.String(), lines[i].EncodedString,
			lines[i].ChecksumDigit, lines[i].Method, lines[i].Version)
		if err != nil {
			return fmt.Errorf("failed to insert line %s: %w", lines[i].SKU, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit print job: %w", err)
	}
	return nil
}

func scanPrintJob(scan func(dest ...interface{}) error) (*model.PrintJob, error) {
	var job model.PrintJob
	var createdAt string
	if err := scan(&job.ID, &job.OwnerUserID, &createdAt, &job.FormatSnapshot, &job.TotalItems); err != nil {
		return nil, err
	}
	job.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &job, nil
}

// GetJob retrieves a job header. Returns ErrJobNotFound when absent.
func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*model.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_user_id, created_at, format_snapshot, total_items FROM print_jobs WHERE id = ?`, jobID)

	job, err := scanPrintJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get print job: %w", err)
	}
	return job, nil
}

// GetJobLines retrieves all lines of a job in insertion order.
func (s *SQLiteStore) GetJobLines(ctx context.Context, jobID string) ([]model.PrintJobLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, sku, price_amount, encoded_string, checksum_digit, method, version
		FROM print_job_lines WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job lines: %w", err)
	}
	defer rows.Close()

	var lines []model.PrintJobLine
	for rows.Next() {
		var line model.PrintJobLine
		var amount string
		if err := rows.Scan(&line.ID, &line.JobID, &line.SKU, &amount,
			&line.EncodedString, &line.ChecksumDigit, &line.Method, &line.Version); err != nil {
			return nil, fmt.Errorf("failed to scan job line: %w", err)
		}
		if line.PriceAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad price_amount %q: %w", amount, err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...interface{}) ([]model.PrintJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query print jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.PrintJob
	for rows.Next() {
		job, err := scanPrintJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan print job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// ListJobs returns all job headers, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]model.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryJobs(ctx,
		`SELECT id, owner_user_id, created_at, format_snapshot, total_items FROM print_jobs ORDER BY created_at DESC`)
}

// ListJobsByOwner returns job headers for one owner, newest first.
func (s *SQLiteStore) ListJobsByOwner(ctx context.Context, ownerUserID string) ([]model.PrintJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryJobs(ctx,
		`SELECT id, owner_user_id, created_at, format_snapshot, total_items FROM print_jobs WHERE owner_user_id = ? ORDER BY created_at DESC`,
		ownerUserID)
}

// DeleteJobsByOwners removes every job owned by one of ownerUserIDs.
func (s *SQLiteStore) DeleteJobsByOwners(ctx context.Context, ownerUserIDs []string) (int64, error) {
	if len(ownerUserIDs) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ownerUserIDs)), ",")
	args := make([]interface{}, len(ownerUserIDs))
	for i, id := range ownerUserIDs {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM print_jobs WHERE owner_user_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned jobs: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("[SQLiteStore] Deleted %d orphaned print jobs (owners: %d)", deleted, len(ownerUserIDs))
	}
	return deleted, nil
}

// GetStats returns counters about the print store.
func (s *SQLiteStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]interface{})

	var jobs, lines, items int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM print_jobs`).Scan(&jobs); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM print_job_lines`).Scan(&lines); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items`).Scan(&items); err != nil {
		return nil, err
	}
	stats["print_jobs"] = jobs
	stats["print_job_lines"] = lines
	stats["inventory_items"] = items

	var lastJob sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM print_jobs`).Scan(&lastJob); err == nil && lastJob.Valid {
		stats["last_job_at"] = lastJob.String
	}

	var lastNo int64
	if err := s.db.QueryRowContext(ctx, `SELECT last_no FROM sku_sequences WHERE name = ?`, skuSequenceName).Scan(&lastNo); err == nil {
		stats["sku_sequence"] = lastNo
	}

	var pageCount, pageSize int64
	s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount)
	s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
	stats["db_size_bytes"] = pageCount * pageSize

	return stats, nil
}

// ListUserIDs returns the IDs of all known users.
func (s *SQLiteStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UserExists reports whether a user ID is known.
func (s *SQLiteStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// CreateUser registers a user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	active := 0
	if user.Active {
		active = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, active, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, active, user.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// DeleteUser removes a user record. Used by back-office user management;
// print jobs owned by the user intentionally survive until reconciliation.
func (s *SQLiteStore) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

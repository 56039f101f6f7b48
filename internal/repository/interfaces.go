package repository

import (
	"context"
	"errors"

	"gemstock-api/internal/model"

	"github.com/shopspring/decimal"
)

// ErrSKUAllocationFailed wraps any failure to atomically allocate a SKU
// suffix. The enclosing inventory-creation transaction is rolled back as a
// whole; an inventory row is never persisted without a SKU.
var ErrSKUAllocationFailed = errors.New("sku suffix allocation failed")

// ErrJobNotFound is returned when a print job ID does not exist.
var ErrJobNotFound = errors.New("print job not found")

// InventoryRepository defines inventory data access. The print subsystem
// treats inventory as an external collaborator: it reads records at
// job-creation and reprint time and never mutates pricing itself.
type InventoryRepository interface {
	// CreateItem inserts the item and assigns its SKU in one transaction.
	// The SKU is skuPrefix plus a zero-padded suffix drawn from the shared
	// atomic counter. Returns the assigned SKU.
	CreateItem(ctx context.Context, item *model.InventoryItem, skuPrefix string, padding int) (string, error)

	// GetItemByID retrieves an item by row ID. Returns (nil, nil) when absent.
	GetItemByID(ctx context.Context, id int64) (*model.InventoryItem, error)

	// GetItemBySKU retrieves an item by SKU. Returns (nil, nil) when absent.
	GetItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error)

	// UpdateItemPricing changes the pricing fields of an existing item.
	// Historical print-job lines are unaffected by design.
	UpdateItemPricing(ctx context.Context, sku string, ratePerUnit, flatPrice decimal.Decimal) error
}

// PrintJobRepository defines storage for print jobs and their lines.
// Jobs and lines are written once, transactionally, and never updated.
type PrintJobRepository interface {
	// CreateJob persists the job and all of its lines in a single
	// transaction. A partial job must never be observable.
	CreateJob(ctx context.Context, job *model.PrintJob, lines []model.PrintJobLine) error

	// GetJob retrieves a job header. Returns ErrJobNotFound when absent.
	GetJob(ctx context.Context, jobID string) (*model.PrintJob, error)

	// GetJobLines retrieves all lines of a job in insertion order.
	GetJobLines(ctx context.Context, jobID string) ([]model.PrintJobLine, error)

	// ListJobs returns all job headers, newest first.
	ListJobs(ctx context.Context) ([]model.PrintJob, error)

	// ListJobsByOwner returns job headers for one owner, newest first.
	ListJobsByOwner(ctx context.Context, ownerUserID string) ([]model.PrintJob, error)

	// DeleteJobsByOwners removes every job whose owner is in ownerUserIDs.
	// Lines are removed with their parent job. Used only by orphan
	// reconciliation.
	DeleteJobsByOwners(ctx context.Context, ownerUserIDs []string) (int64, error)

	// GetStats returns counters about the print store for the admin surface.
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

// UserDirectory exposes the back-office user subsystem to the reconciler.
// Only identity checks are needed here; user lifecycle is owned elsewhere.
type UserDirectory interface {
	// ListUserIDs returns the IDs of all known users.
	ListUserIDs(ctx context.Context) ([]string, error)

	// UserExists reports whether a user ID is known.
	UserExists(ctx context.Context, userID string) (bool, error)

	// CreateUser registers a user. Present so single-store deployments can
	// seed accounts; the external MySQL directory implements it too.
	CreateUser(ctx context.Context, user *model.User) error
}

// Store is the full persistence surface of a single-database deployment.
type Store interface {
	InventoryRepository
	PrintJobRepository
	UserDirectory

	// Close closes the underlying database.
	Close() error
}

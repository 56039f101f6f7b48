package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gemstock-api/internal/cache"
	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"
	"gemstock-api/pkg/pricecode"
	"gemstock-api/pkg/uid"

	"github.com/shopspring/decimal"
)

// MissingItemPolicy decides what happens when a requested inventory ID has
// no matching record at job-creation time.
type MissingItemPolicy string

const (
	// MissingItemSkip drops unknown IDs and prints the rest.
	MissingItemSkip MissingItemPolicy = "skip"

	// MissingItemFail aborts the whole job on the first unknown ID.
	MissingItemFail MissingItemPolicy = "fail"
)

// ErrItemNotFound is returned under the fail policy when a requested
// inventory ID does not exist.
var ErrItemNotFound = errors.New("inventory item not found")

// ErrNoPrintableItems is returned when a job request resolves to zero lines.
var ErrNoPrintableItems = errors.New("no printable items in request")

// ErrDanglingOwner signals that a job listing hit a job whose owning user no
// longer exists. Internal recovery signal: the service reconciles orphans
// and retries; callers never see it unless reconciliation itself fails.
var ErrDanglingOwner = errors.New("print job references deleted user")

// PrintJobService orchestrates label print runs: price computation and
// encoding, the immutable job/line snapshot, cart cleanup, reprints, and
// orphan reconciliation.
type PrintJobService struct {
	jobs      repository.PrintJobRepository
	inventory repository.InventoryRepository
	users     repository.UserDirectory
	cart      cache.Cart
	policy    MissingItemPolicy
}

// NewPrintJobService creates a new print job service. jobs and inventory are
// required; users enables orphan reconciliation and cart enables cleanup,
// both may be nil. An empty policy defaults to skip.
func NewPrintJobService(
	jobs repository.PrintJobRepository,
	inventory repository.InventoryRepository,
	users repository.UserDirectory,
	cart cache.Cart,
	policy MissingItemPolicy,
) *PrintJobService {
	if jobs == nil || inventory == nil {
		return nil
	}
	if policy == "" {
		policy = MissingItemSkip
	}
	return &PrintJobService{
		jobs:      jobs,
		inventory: inventory,
		users:     users,
		cart:      cart,
		policy:    policy,
	}
}

// CreateJob computes the label price for each requested item, persists the
// job with one immutable line per label, clears the printed items from the
// user's cart and returns render-ready lines for the PDF collaborator.
//
// The job and all lines commit in a single transaction; a failure while
// encoding or persisting leaves no partial job behind. Cart cleanup runs
// after the commit and is best-effort.
func (s *PrintJobService) CreateJob(ctx context.Context, inventoryIDs []int64, format model.PrintFormat, actingUserID string) (*model.PrintJobResult, error) {
	if actingUserID == "" {
		return nil, errors.New("acting user id is required")
	}

	var (
		lines      []model.PrintJobLine
		rendered   []model.LabelLine
		printedIDs []int64
		skipped    []int64
	)

	for _, id := range inventoryIDs {
		item, err := s.inventory.GetItemByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory item %d: %w", id, err)
		}
		if item == nil {
			if s.policy == MissingItemFail {
				return nil, fmt.Errorf("%w: id %d", ErrItemNotFound, id)
			}
			log.Printf("[PrintJobService] Skipping unknown inventory id %d", id)
			skipped = append(skipped, id)
			continue
		}

		amount := item.LabelPrice()
		encoded, err := pricecode.Encode(amount)
		if err != nil {
			return nil, fmt.Errorf("failed to encode price for %s: %w", item.SKU, err)
		}

		lines = append(lines, model.PrintJobLine{
			SKU:           item.SKU,
			PriceAmount:   amount,
			EncodedString: encoded.EncodedString,
			ChecksumDigit: encoded.ChecksumDigit,
			Method:        encoded.Method,
			Version:       encoded.Version,
		})
		rendered = append(rendered, renderLine(item, amount, encoded.EncodedString, encoded.ChecksumDigit))
		printedIDs = append(printedIDs, id)
	}

	if len(lines) == 0 {
		return nil, ErrNoPrintableItems
	}

	job := &model.PrintJob{
		ID:             uid.New(),
		OwnerUserID:    actingUserID,
		CreatedAt:      time.Now().UTC(),
		FormatSnapshot: format.Snapshot(),
		TotalItems:     len(lines),
	}

	if err := s.jobs.CreateJob(ctx, job, lines); err != nil {
		return nil, fmt.Errorf("failed to persist print job: %w", err)
	}

	s.clearCart(ctx, actingUserID, printedIDs)

	log.Printf("[PrintJobService] Created job %s (%d labels, %d skipped) for user %s",
		job.ID, len(lines), len(skipped), actingUserID)

	return &model.PrintJobResult{JobID: job.ID, Lines: rendered, Skipped: skipped}, nil
}

// clearCart removes printed items from the user's pending cart. At-least-once
// is enough: the job is already committed, and a leftover entry only means
// the user sees an item still queued until the next removal.
func (s *PrintJobService) clearCart(ctx context.Context, userID string, itemIDs []int64) {
	if s.cart == nil || len(itemIDs) == 0 {
		return
	}
	if err := s.cart.RemoveMany(ctx, userID, itemIDs); err != nil {
		log.Printf("[PrintJobService] Cart cleanup failed for user %s: %v", userID, err)
	}
}

// Reprint reconstructs the labels of a historical job. Display fields come
// fresh from inventory and may have drifted; priceAmount and encodedString
// come exclusively from the stored job lines, so a reprinted tag matches the
// original even after price edits. Lines whose inventory record has been
// deleted are omitted: price alone is not enough to render a label.
func (s *PrintJobService) Reprint(ctx context.Context, jobID string) ([]model.LabelLine, error) {
	if _, err := s.jobs.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	stored, err := s.jobs.GetJobLines(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job lines: %w", err)
	}

	labels := make([]model.LabelLine, 0, len(stored))
	for _, line := range stored {
		item, err := s.inventory.GetItemBySKU(ctx, line.SKU)
		if err != nil {
			return nil, fmt.Errorf("failed to load inventory for %s: %w", line.SKU, err)
		}
		if item == nil {
			log.Printf("[PrintJobService] Omitting reprint line %s of job %s: inventory record gone", line.SKU, jobID)
			continue
		}
		labels = append(labels, renderLine(item, line.PriceAmount, line.EncodedString, line.ChecksumDigit))
	}
	return labels, nil
}

// ListJobs returns all jobs, reconciling orphans if the listing trips over a
// job whose owner has been deleted. The retry happens exactly once; a second
// dangling reference surfaces as an error.
func (s *PrintJobService) ListJobs(ctx context.Context) ([]model.PrintJob, error) {
	jobs, err := s.listJobsChecked(ctx)
	if err == nil || !errors.Is(err, ErrDanglingOwner) {
		return jobs, err
	}

	log.Printf("[PrintJobService] Job listing hit dangling owner, reconciling: %v", err)
	if _, rerr := s.ReconcileOrphans(ctx); rerr != nil {
		return nil, fmt.Errorf("orphan reconciliation failed: %w", rerr)
	}
	return s.listJobsChecked(ctx)
}

// ListJobsByOwner returns one user's jobs, newest first.
func (s *PrintJobService) ListJobsByOwner(ctx context.Context, ownerUserID string) ([]model.PrintJob, error) {
	return s.jobs.ListJobsByOwner(ctx, ownerUserID)
}

// listJobsChecked loads all jobs and verifies every owner still exists,
// reproducing the integrity failure a strict relational read would raise.
func (s *PrintJobService) listJobsChecked(ctx context.Context) ([]model.PrintJob, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	if s.users == nil {
		return jobs, nil
	}

	valid, err := s.validUserSet(ctx)
	if err != nil {
		return nil, err
	}
	for _, job := range jobs {
		if _, ok := valid[job.OwnerUserID]; !ok {
			return nil, fmt.Errorf("%w: job %s owner %s", ErrDanglingOwner, job.ID, job.OwnerUserID)
		}
	}
	return jobs, nil
}

// ReconcileOrphans deletes every job whose owner is no longer a valid user.
// Idempotent and safe to run repeatedly; job lines are removed with their
// parent job and are never touched individually.
func (s *PrintJobService) ReconcileOrphans(ctx context.Context) (int64, error) {
	if s.users == nil {
		return 0, nil
	}

	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return 0, err
	}

	valid, err := s.validUserSet(ctx)
	if err != nil {
		return 0, err
	}

	orphanOwners := make(map[string]struct{})
	for _, job := range jobs {
		if _, ok := valid[job.OwnerUserID]; !ok {
			orphanOwners[job.OwnerUserID] = struct{}{}
		}
	}
	if len(orphanOwners) == 0 {
		return 0, nil
	}

	owners := make([]string, 0, len(orphanOwners))
	for owner := range orphanOwners {
		owners = append(owners, owner)
	}

	deleted, err := s.jobs.DeleteJobsByOwners(ctx, owners)
	if err != nil {
		return 0, err
	}
	log.Printf("[PrintJobService] Reconciled %d orphaned jobs from %d deleted users", deleted, len(owners))
	return deleted, nil
}

func (s *PrintJobService) validUserSet(ctx context.Context) (map[string]struct{}, error) {
	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load user ids: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func renderLine(item *model.InventoryItem, amount decimal.Decimal, encoded string, check int) model.LabelLine {
	return model.LabelLine{
		SKU:           item.SKU,
		Name:          item.Name,
		Shape:         item.Shape,
		StockLocation: item.StockLocation,
		WeightValue:   item.WeightValue,
		WeightUnit:    item.WeightUnit,
		PriceAmount:   amount,
		EncodedString: encoded,
		ChecksumDigit: check,
	}
}

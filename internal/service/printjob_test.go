package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"gemstock-api/internal/cache"
	"gemstock-api/internal/model"
	"gemstock-api/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()
	store, err := repository.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUser(t *testing.T, store *repository.SQLiteStore, id string) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &model.User{ID: id, Name: id, Active: true}))
}

func seedItem(t *testing.T, store *repository.SQLiteStore, name, weight string, mode model.PricingMode, rate, flat string) *model.InventoryItem {
	t.Helper()
	svc := NewInventoryService(store, NewSKUGenerator(0, ""))
	item, err := svc.CreateItem(context.Background(), CreateItemInput{
		Name:          name,
		Shape:         "oval",
		StockLocation: "S1",
		Category:      model.FoundCode("EMR"),
		Material:      model.FoundCode("GLD"),
		Color:         model.FoundCode("GRN"),
		WeightValue:   decimal.RequireFromString(weight),
		WeightUnit:    "ct",
		PricingMode:   mode,
		RatePerUnit:   decimal.RequireFromString(rate),
		FlatPrice:     decimal.RequireFromString(flat),
	})
	require.NoError(t, err)
	return item
}

func TestCreateJobSnapshotsPrices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")

	// 500/ct x 2.5ct = 1250; flat item prices at 990 regardless of rate.
	perCarat := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")
	flat := seedItem(t, store, "pendant", "1.2", model.PricingFlat, "100", "990")

	cart := cache.NewMemoryCart()
	require.NoError(t, cart.Add(ctx, "u1", perCarat.ID, flat.ID, 9999))

	svc := NewPrintJobService(store, store, store, cart, MissingItemSkip)
	result, err := svc.CreateJob(ctx, []int64{perCarat.ID, flat.ID},
		model.PrintFormat{Name: "standard", Columns: 3}, "u1")
	require.NoError(t, err)
	require.Len(t, result.Lines, 2)
	assert.Empty(t, result.Skipped)

	first := result.Lines[0]
	assert.Equal(t, perCarat.SKU, first.SKU)
	assert.True(t, first.PriceAmount.Equal(decimal.RequireFromString("1250")), "got %s", first.PriceAmount)
	assert.Equal(t, "12508", first.EncodedString)
	assert.Equal(t, 8, first.ChecksumDigit)

	second := result.Lines[1]
	assert.Equal(t, flat.SKU, second.SKU)
	assert.True(t, second.PriceAmount.Equal(decimal.RequireFromString("990")))
	assert.Equal(t, "9909", second.EncodedString)
	assert.Equal(t, 9, second.ChecksumDigit)

	// The job header and lines are persisted.
	job, err := store.GetJob(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, "u1", job.OwnerUserID)
	assert.Equal(t, 2, job.TotalItems)
	assert.Contains(t, job.FormatSnapshot, "standard")

	lines, err := store.GetJobLines(ctx, result.JobID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, perCarat.SKU, lines[0].SKU)
	assert.Equal(t, "12508", lines[0].EncodedString)

	// Printed items left the cart; unrelated entries stay.
	remaining, err := cart.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int64{9999}, remaining)
}

func TestCreateJobMissingItemSkipped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")
	item := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")

	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)
	result, err := svc.CreateJob(ctx, []int64{item.ID, 404}, model.PrintFormat{Name: "standard"}, "u1")
	require.NoError(t, err)
	assert.Len(t, result.Lines, 1)
	assert.Equal(t, []int64{404}, result.Skipped)
}

func TestCreateJobMissingItemFailPolicy(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")
	item := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")

	svc := NewPrintJobService(store, store, store, nil, MissingItemFail)
	_, err := svc.CreateJob(ctx, []int64{item.ID, 404}, model.PrintFormat{Name: "standard"}, "u1")
	assert.ErrorIs(t, err, ErrItemNotFound)

	// The failed run left no partial job behind.
	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestCreateJobNothingPrintable(t *testing.T) {
	store := newTestStore(t)
	seedUser(t, store, "u1")

	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)
	_, err := svc.CreateJob(context.Background(), []int64{1, 2, 3}, model.PrintFormat{}, "u1")
	assert.ErrorIs(t, err, ErrNoPrintableItems)
}

func TestReprintKeepsOriginalPrices(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")
	item := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")

	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)
	result, err := svc.CreateJob(ctx, []int64{item.ID}, model.PrintFormat{Name: "standard"}, "u1")
	require.NoError(t, err)

	// Reprice after the run: the live item changes, the printed job must not.
	require.NoError(t, store.UpdateItemPricing(ctx, item.SKU,
		decimal.RequireFromString("900"), decimal.Zero))

	live, err := store.GetItemBySKU(ctx, item.SKU)
	require.NoError(t, err)
	assert.True(t, live.LabelPrice().Equal(decimal.RequireFromString("2250")))

	labels, err := svc.Reprint(ctx, result.JobID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.True(t, labels[0].PriceAmount.Equal(decimal.RequireFromString("1250")),
		"reprint must use the stored amount, got %s", labels[0].PriceAmount)
	assert.Equal(t, "12508", labels[0].EncodedString)
	assert.Equal(t, item.SKU, labels[0].SKU)
	assert.Equal(t, "emerald", labels[0].Name)
}

// tombstoneInventory hides selected SKUs, standing in for inventory records
// deleted after a job was printed.
type tombstoneInventory struct {
	repository.InventoryRepository
	gone map[string]bool
}

func (t *tombstoneInventory) GetItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	if t.gone[sku] {
		return nil, nil
	}
	return t.InventoryRepository.GetItemBySKU(ctx, sku)
}

func TestReprintOmitsDeletedInventory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")
	kept := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")
	deleted := seedItem(t, store, "pendant", "1.2", model.PricingFlat, "100", "990")

	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)
	result, err := svc.CreateJob(ctx, []int64{kept.ID, deleted.ID}, model.PrintFormat{}, "u1")
	require.NoError(t, err)

	inv := &tombstoneInventory{InventoryRepository: store, gone: map[string]bool{deleted.SKU: true}}
	reprinter := NewPrintJobService(store, inv, store, nil, MissingItemSkip)

	labels, err := reprinter.Reprint(ctx, result.JobID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	assert.Equal(t, kept.SKU, labels[0].SKU)
}

func TestReprintUnknownJob(t *testing.T) {
	store := newTestStore(t)
	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)

	_, err := svc.Reprint(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestListJobsReconcilesOrphans(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedUser(t, store, "u1")
	seedUser(t, store, "u2")
	item := seedItem(t, store, "emerald", "2.5", model.PricingPerCarat, "500", "0")

	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)
	keptJob, err := svc.CreateJob(ctx, []int64{item.ID}, model.PrintFormat{}, "u1")
	require.NoError(t, err)
	_, err = svc.CreateJob(ctx, []int64{item.ID}, model.PrintFormat{}, "u2")
	require.NoError(t, err)

	// Deleting the user leaves its jobs dangling until the next listing.
	require.NoError(t, store.DeleteUser(ctx, "u2"))

	jobs, err := svc.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, keptJob.JobID, jobs[0].ID)
	assert.Equal(t, "u1", jobs[0].OwnerUserID)

	// Lines of the orphaned job are gone with it.
	lines, err := store.GetJobLines(ctx, keptJob.JobID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)

	// A second pass finds nothing left to clean.
	deleted, err := svc.ReconcileOrphans(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestCreateJobRequiresUser(t *testing.T) {
	store := newTestStore(t)
	svc := NewPrintJobService(store, store, store, nil, MissingItemSkip)

	_, err := svc.CreateJob(context.Background(), []int64{1}, model.PrintFormat{}, "")
	assert.Error(t, err)
}

func TestConcurrentSKUAllocation(t *testing.T) {
	store := newTestStore(t)
	svc := NewInventoryService(store, NewSKUGenerator(0, ""))

	const n = 25
	skus := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item, err := svc.CreateItem(context.Background(), CreateItemInput{
				Name:        fmt.Sprintf("stone-%d", i),
				Category:    model.FoundCode("EMR"),
				Material:    model.FoundCode("GLD"),
				Color:       model.FoundCode("GRN"),
				WeightValue: decimal.RequireFromString("2.5"),
				WeightUnit:  "ct",
				PricingMode: model.PricingPerCarat,
				RatePerUnit: decimal.RequireFromString("500"),
			})
			if assert.NoError(t, err) {
				skus[i] = item.SKU
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, sku := range skus {
		require.NotEmpty(t, sku)
		assert.False(t, seen[sku], "duplicate sku %s", sku)
		seen[sku] = true
		assert.Regexp(t, `^EMR-GLD-GRN-2\.50-\d{6}$`, sku)
	}
}

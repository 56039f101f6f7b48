package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gemstock-api/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testItem() *model.InventoryItem {
	return &model.InventoryItem{
		Name:         "emerald",
		CategoryCode: "EMR",
		MaterialCode: "GLD",
		ColorCode:    "GRN",
		WeightValue:  decimal.RequireFromString("2.5"),
		WeightUnit:   "ct",
		PricingMode:  model.PricingPerCarat,
		RatePerUnit:  decimal.RequireFromString("500"),
		FlatPrice:    decimal.Zero,
	}
}

func TestSQLiteCreateItemAssignsSuffix(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.CreateItem(ctx, testItem(), "EMR-GLD-GRN-2.50-", 6)
	require.NoError(t, err)
	assert.Equal(t, "EMR-GLD-GRN-2.50-000001", first)

	second, err := store.CreateItem(ctx, testItem(), "EMR-GLD-GRN-2.50-", 6)
	require.NoError(t, err)
	assert.Equal(t, "EMR-GLD-GRN-2.50-000002", second)

	// The counter is global across prefixes.
	third, err := store.CreateItem(ctx, testItem(), "RBY-SLV-RED-1.00-", 6)
	require.NoError(t, err)
	assert.Equal(t, "RBY-SLV-RED-1.00-000003", third)
}

func TestSQLiteInventoryRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item := testItem()
	sku, err := store.CreateItem(ctx, item, "EMR-GLD-GRN-2.50-", 6)
	require.NoError(t, err)
	require.NotZero(t, item.ID)

	got, err := store.GetItemBySKU(ctx, sku)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "emerald", got.Name)
	assert.True(t, got.WeightValue.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, got.RatePerUnit.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, model.PricingPerCarat, got.PricingMode)

	byID, err := store.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, sku, byID.SKU)

	missing, err := store.GetItemBySKU(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteUpdateItemPricing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	sku, err := store.CreateItem(ctx, testItem(), "EMR-GLD-GRN-2.50-", 6)
	require.NoError(t, err)

	require.NoError(t, store.UpdateItemPricing(ctx, sku,
		decimal.RequireFromString("750"), decimal.RequireFromString("2000")))

	got, err := store.GetItemBySKU(ctx, sku)
	require.NoError(t, err)
	assert.True(t, got.RatePerUnit.Equal(decimal.RequireFromString("750")))
	assert.True(t, got.FlatPrice.Equal(decimal.RequireFromString("2000")))

	err = store.UpdateItemPricing(ctx, "nope", decimal.Zero, decimal.Zero)
	assert.Error(t, err)
}

func TestSQLitePrintJobLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	job := &model.PrintJob{
		ID:             "job-1",
		OwnerUserID:    "u1",
		CreatedAt:      time.Now().UTC(),
		FormatSnapshot: `{"name":"standard"}`,
		TotalItems:     2,
	}
	lines := []model.PrintJobLine{
		{SKU: "A", PriceAmount: decimal.RequireFromString("1250"), EncodedString: "12508", ChecksumDigit: 8, Method: "MOD9", Version: 1},
		{SKU: "B", PriceAmount: decimal.RequireFromString("990"), EncodedString: "9909", ChecksumDigit: 9, Method: "MOD9", Version: 1},
	}
	require.NoError(t, store.CreateJob(ctx, job, lines))

	got, err := store.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.OwnerUserID)
	assert.Equal(t, 2, got.TotalItems)

	gotLines, err := store.GetJobLines(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, gotLines, 2)
	assert.Equal(t, "A", gotLines[0].SKU)
	assert.True(t, gotLines[0].PriceAmount.Equal(decimal.RequireFromString("1250")))
	assert.Equal(t, "B", gotLines[1].SKU)

	_, err = store.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestSQLiteDeleteJobsByOwnersCascades(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, owner := range []string{"u1", "u2", "u2"} {
		job := &model.PrintJob{
			ID:          string(rune('a' + i)),
			OwnerUserID: owner,
			CreatedAt:   time.Now().UTC(),
			TotalItems:  1,
		}
		line := model.PrintJobLine{SKU: "A", PriceAmount: decimal.RequireFromString("10"),
			EncodedString: "101", ChecksumDigit: 1, Method: "MOD9", Version: 1}
		require.NoError(t, store.CreateJob(ctx, job, []model.PrintJobLine{line}))
	}

	deleted, err := store.DeleteJobsByOwners(ctx, []string{"u2", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	jobs, err := store.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "u1", jobs[0].OwnerUserID)

	// Lines vanish with their parent jobs.
	stats, err := store.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats["print_job_lines"])

	deleted, err = store.DeleteJobsByOwners(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSQLiteUserDirectory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &model.User{ID: "u1", Name: "Aye", Active: true}))
	require.NoError(t, store.CreateUser(ctx, &model.User{ID: "u2", Name: "Bee", Active: true}))

	ids, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)

	exists, err := store.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.DeleteUser(ctx, "u1"))
	exists, err = store.UserExists(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, exists)
}

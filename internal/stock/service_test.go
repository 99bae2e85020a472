package stock

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

type fakeRepo struct {
	items    map[string]Item
	history  []HistoryEntry
	links    map[string]SaleLink
	expenses map[string]bool
	products map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:    map[string]Item{},
		links:    map[string]SaleLink{},
		expenses: map[string]bool{},
		products: map[string]string{},
	}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(_ context.Context, id, ownerID string) (Item, error) {
	item, ok := f.items[id]
	if !ok || item.OwnerID != ownerID {
		return Item{}, fmt.Errorf("%w: stock item", httpx.ErrNotFound)
	}
	return item, nil
}

func (f *fakeRepo) List(_ context.Context, ownerID string) ([]Item, error) {
	out := []Item{}
	for _, item := range f.items {
		if item.OwnerID == ownerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListHistory(_ context.Context, stockID, _ string) ([]HistoryEntry, error) {
	out := []HistoryEntry{}
	for _, entry := range f.history {
		if entry.StockID == stockID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (f *fakeRepo) ExpenseExists(_ context.Context, expenseID, _ string) (bool, error) {
	return f.expenses[expenseID], nil
}

func (f *fakeRepo) Delete(_ context.Context, id, _ string) error {
	delete(f.items, id)
	return nil
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, id, ownerID string) (Item, error) {
	return f.Get(ctx, id, ownerID)
}

func (f *fakeRepo) Insert(_ context.Context, item Item) (Item, error) {
	item.ID = uuid.NewString()
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) Save(_ context.Context, item Item) error {
	if _, ok := f.items[item.ID]; !ok {
		return fmt.Errorf("%w: stock item", httpx.ErrNotFound)
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) InsertHistory(_ context.Context, entry HistoryEntry) error {
	entry.ID = uuid.NewString()
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeRepo) FindSaleLink(_ context.Context, productID, _ string) (SaleLink, bool, error) {
	link, ok := f.links[productID]
	return link, ok, nil
}

func (f *fakeRepo) ProductName(_ context.Context, productID string) (string, error) {
	return f.products[productID], nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateRecordsInitialIntake(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Flour",
		Quantity:    dec("10"),
		UnitMeasure: "kg",
		UnitPrice:   dec("4.50"),
		TotalPrice:  dec("45.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.True(t, item.TotalQuantityPurchased.Equal(dec("10")))

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	require.Equal(t, HistoryIncoming, entry.Type)
	require.True(t, entry.InitialQuantity.IsZero())
	require.True(t, entry.FinalQuantity.Equal(dec("10")))
}

func TestCreateRejectsUnknownExpense(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Flour",
		Quantity:    dec("10"),
		UnitMeasure: "kg",
		UnitPrice:   dec("4.50"),
		TotalPrice:  dec("45.00"),
		ExpenseID:   "missing",
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateRecomputesWeightedAverage(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Coffee beans",
		Quantity:    dec("10"),
		UnitMeasure: "kg",
		UnitPrice:   dec("10.00"),
		TotalPrice:  dec("100.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	qty := dec("5")
	total := dec("100.00")
	updated, err := svc.Update(context.Background(), item.ID, UpdateItemRequest{
		Quantity:   &qty,
		TotalPrice: &total,
	}, "profile-1")
	require.NoError(t, err)

	// 200.00 spent across 15 purchased units.
	require.True(t, updated.Quantity.Equal(dec("15")))
	require.True(t, updated.AverageUnitCost().Equal(dec("200").Div(dec("15"))))

	require.Len(t, repo.history, 2)
	restock := repo.history[1]
	require.Equal(t, HistoryIncoming, restock.Type)
	require.True(t, restock.InitialQuantity.Equal(dec("10")))
	require.True(t, restock.FinalQuantity.Equal(dec("15")))
	require.NotNil(t, restock.UnitPrice)
	require.True(t, restock.UnitPrice.Equal(dec("200").Div(dec("15"))))
}

func TestUpdateWithoutQuantitySkipsHistory(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Sugar",
		Quantity:    dec("3"),
		UnitMeasure: "kg",
		UnitPrice:   dec("2.00"),
		TotalPrice:  dec("6.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	name := "Brown sugar"
	_, err = svc.Update(context.Background(), item.ID, UpdateItemRequest{Name: &name}, "profile-1")
	require.NoError(t, err)
	require.Len(t, repo.history, 1)
}

func TestUpdateByInventoryOverwritesQuantities(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Milk",
		Quantity:    dec("20"),
		UnitMeasure: "l",
		UnitPrice:   dec("1.20"),
		TotalPrice:  dec("24.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	err = svc.UpdateByInventory(context.Background(), UpdateByInventoryRequest{
		Items: []InventoryCount{{ID: item.ID, Quantity: dec("17.5")}},
	}, "profile-1")
	require.NoError(t, err)

	stored := repo.items[item.ID]
	require.True(t, stored.Quantity.Equal(dec("17.5")))
	// Counting does not touch the purchase accumulators.
	require.True(t, stored.TotalQuantityPurchased.Equal(dec("20")))

	last := repo.history[len(repo.history)-1]
	require.Equal(t, HistoryInventory, last.Type)
	require.True(t, last.InitialQuantity.Equal(dec("20")))
	require.True(t, last.FinalQuantity.Equal(dec("17.5")))
}

func TestApplySaleDecrementsLinkedStock(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Beef patty",
		Quantity:    dec("40"),
		UnitMeasure: "un",
		UnitPrice:   dec("2.50"),
		TotalPrice:  dec("100.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	repo.links["prod-burger"] = SaleLink{StockID: item.ID, ProductID: "prod-burger", Quantity: dec("2")}
	repo.products["prod-burger"] = "Double burger"

	err = svc.UpdateBySale(context.Background(), "prod-burger", 3, "profile-1")
	require.NoError(t, err)

	stored := repo.items[item.ID]
	require.True(t, stored.Quantity.Equal(dec("34")))

	last := repo.history[len(repo.history)-1]
	require.Equal(t, HistoryOutgoing, last.Type)
	require.Equal(t, "Sale - Double burger", last.Description)
}

func TestApplySaleWithoutLinkIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Napkins",
		Quantity:    dec("500"),
		UnitMeasure: "un",
		UnitPrice:   dec("0.01"),
		TotalPrice:  dec("5.00"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	err = svc.UpdateBySale(context.Background(), "prod-unlinked", 10, "profile-1")
	require.NoError(t, err)

	require.True(t, repo.items[item.ID].Quantity.Equal(dec("500")))
	require.Len(t, repo.history, 1)
}

func TestApplySaleAllowsNegativeQuantity(t *testing.T) {
	repo := newFakeRepo()
	repo.expenses["exp-1"] = true
	svc := NewService(repo, nil)

	item, err := svc.Create(context.Background(), CreateItemRequest{
		Name:        "Buns",
		Quantity:    dec("1"),
		UnitMeasure: "un",
		UnitPrice:   dec("0.50"),
		TotalPrice:  dec("0.50"),
		ExpenseID:   "exp-1",
	}, "profile-1")
	require.NoError(t, err)

	repo.links["prod-bun"] = SaleLink{StockID: item.ID, ProductID: "prod-bun", Quantity: dec("1")}
	repo.products["prod-bun"] = "Bun"

	err = svc.UpdateBySale(context.Background(), "prod-bun", 4, "profile-1")
	require.NoError(t, err)
	require.True(t, repo.items[item.ID].Quantity.Equal(dec("-3")))
}

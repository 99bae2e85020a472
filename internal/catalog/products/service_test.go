package products

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
	products   map[string]Product
	links      map[string][]StockLink
	categories map[string]bool
	stocks     map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products:   map[string]Product{},
		links:      map[string][]StockLink{},
		categories: map[string]bool{},
		stocks:     map[string]bool{},
	}
}

func (f *fakeRepo) snapshot() fakeRepo {
	backup := fakeRepo{
		products:   map[string]Product{},
		links:      map[string][]StockLink{},
		categories: map[string]bool{},
		stocks:     map[string]bool{},
	}
	for id, product := range f.products {
		backup.products[id] = product
	}
	for id, links := range f.links {
		backup.links[id] = append([]StockLink(nil), links...)
	}
	for id, ok := range f.categories {
		backup.categories[id] = ok
	}
	for id, ok := range f.stocks {
		backup.stocks[id] = ok
	}
	return backup
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	backup := f.snapshot()
	if err := fn(ctx, f); err != nil {
		*f = backup
		return err
	}
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id, ownerID string) (Product, error) {
	product, ok := f.products[id]
	if !ok || product.OwnerID != ownerID {
		return Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	product.StockLinks = f.links[id]
	return product, nil
}

func (f *fakeRepo) List(_ context.Context, ownerID string) ([]Product, error) {
	out := []Product{}
	for _, product := range f.products {
		if product.OwnerID == ownerID {
			product.StockLinks = f.links[product.ID]
			out = append(out, product)
		}
	}
	return out, nil
}

func (f *fakeRepo) CategoryExists(_ context.Context, categoryID, _ string) (bool, error) {
	return f.categories[categoryID], nil
}

func (f *fakeRepo) Delete(_ context.Context, id, _ string) error {
	delete(f.products, id)
	delete(f.links, id)
	return nil
}

func (f *fakeRepo) Insert(_ context.Context, product Product) (Product, error) {
	product.ID = uuid.NewString()
	f.products[product.ID] = product
	return product, nil
}

func (f *fakeRepo) Update(_ context.Context, product Product) error {
	if _, ok := f.products[product.ID]; !ok {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	f.products[product.ID] = product
	return nil
}

func (f *fakeRepo) ReplaceStockLinks(_ context.Context, productID string, links []StockLink) error {
	f.links[productID] = links
	return nil
}

func (f *fakeRepo) StockExists(_ context.Context, stockID, _ string) (bool, error) {
	return f.stocks[stockID], nil
}

func TestCreateLinksStockAtomically(t *testing.T) {
	repo := newFakeRepo()
	repo.categories["cat-1"] = true
	repo.stocks["stock-1"] = true
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), CreateRequest{
		Name:       "Burger",
		Price:      decimal.RequireFromString("18.90"),
		CategoryID: "cat-1",
		StockProducts: []StockLinkInput{
			{StockID: "stock-1", Quantity: decimal.RequireFromString("1")},
		},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, repo.links[product.ID], 1)
	require.Equal(t, "stock-1", repo.links[product.ID][0].StockID)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), CreateRequest{
		Name:       "Burger",
		Price:      decimal.RequireFromString("18.90"),
		CategoryID: "missing",
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateRejectsUnknownStockLink(t *testing.T) {
	repo := newFakeRepo()
	repo.categories["cat-1"] = true
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateRequest{
		Name:       "Burger",
		Price:      decimal.RequireFromString("18.90"),
		CategoryID: "cat-1",
		StockProducts: []StockLinkInput{
			{StockID: "missing", Quantity: decimal.RequireFromString("1")},
		},
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Empty(t, repo.products)
}

func TestUpdateReplacesLinkSet(t *testing.T) {
	repo := newFakeRepo()
	repo.categories["cat-1"] = true
	repo.stocks["stock-1"] = true
	repo.stocks["stock-2"] = true
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), CreateRequest{
		Name:       "Soda",
		Price:      decimal.RequireFromString("6.00"),
		CategoryID: "cat-1",
		StockProducts: []StockLinkInput{
			{StockID: "stock-1", Quantity: decimal.RequireFromString("1")},
		},
	}, "profile-1")
	require.NoError(t, err)

	newLinks := []StockLinkInput{{StockID: "stock-2", Quantity: decimal.RequireFromString("2")}}
	updated, err := svc.Update(context.Background(), product.ID, UpdateRequest{StockProducts: &newLinks}, "profile-1")
	require.NoError(t, err)
	require.Len(t, updated.StockLinks, 1)
	require.Equal(t, "stock-2", updated.StockLinks[0].StockID)
}

func TestUpdateWithoutLinksKeepsExisting(t *testing.T) {
	repo := newFakeRepo()
	repo.categories["cat-1"] = true
	repo.stocks["stock-1"] = true
	svc := NewService(repo)

	product, err := svc.Create(context.Background(), CreateRequest{
		Name:       "Fries",
		Price:      decimal.RequireFromString("9.00"),
		CategoryID: "cat-1",
		StockProducts: []StockLinkInput{
			{StockID: "stock-1", Quantity: decimal.RequireFromString("0.2")},
		},
	}, "profile-1")
	require.NoError(t, err)

	price := decimal.RequireFromString("10.00")
	_, err = svc.Update(context.Background(), product.ID, UpdateRequest{Price: &price}, "profile-1")
	require.NoError(t, err)
	require.Len(t, repo.links[product.ID], 1)
}

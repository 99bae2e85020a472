package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

type fakeClient struct {
	id    string
	name  string
	phone string
}

type fakeRepo struct {
	orders   map[string]*Order
	clients  map[string]fakeClient
	products map[string]Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   map[string]*Order{},
		clients:  map[string]fakeClient{},
		products: map[string]Item{},
	}
}

func (f *fakeRepo) addProduct(id, name, price string) {
	productID := id
	f.products[id] = Item{ProductID: &productID, ProductName: name, Price: decimal.RequireFromString(price)}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(_ context.Context, orderID, ownerID string) (Order, error) {
	order, ok := f.orders[orderID]
	if !ok || order.OwnerID != ownerID {
		return Order{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	return *order, nil
}

func (f *fakeRepo) List(_ context.Context, ownerID string, status *Status) ([]Order, error) {
	out := []Order{}
	for _, order := range f.orders {
		if order.OwnerID != ownerID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		out = append(out, *order)
	}
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, orderID, _ string, status Status) error {
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	order.Status = status
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, orderID, _ string) error {
	delete(f.orders, orderID)
	return nil
}

func (f *fakeRepo) DeleteItem(_ context.Context, orderID, itemID, _ string) error {
	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order item", httpx.ErrNotFound)
	}
	for i, item := range order.Items {
		if item.ID == itemID {
			order.Items = append(order.Items[:i], order.Items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: order item", httpx.ErrNotFound)
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, orderID, ownerID string) (Order, error) {
	return f.Get(ctx, orderID, ownerID)
}

func (f *fakeRepo) InsertOrder(_ context.Context, order Order) (Order, error) {
	order.ID = uuid.NewString()
	stored := order
	f.orders[order.ID] = &stored
	return order, nil
}

func (f *fakeRepo) FindClientByPhone(_ context.Context, phone string) (string, string, bool, error) {
	for _, client := range f.clients {
		if client.phone == phone {
			return client.id, client.name, true, nil
		}
	}
	return "", "", false, nil
}

func (f *fakeRepo) InsertClient(_ context.Context, name, phone string) (string, error) {
	id := uuid.NewString()
	f.clients[id] = fakeClient{id: id, name: name, phone: phone}
	return id, nil
}

func (f *fakeRepo) InsertOrderClient(_ context.Context, orderID, clientID string) (string, error) {
	id := uuid.NewString()
	client := f.clients[clientID]
	f.orders[orderID].Clients = append(f.orders[orderID].Clients, Client{ID: id, ClientID: clientID, Name: client.name, Phone: client.phone})
	return id, nil
}

func (f *fakeRepo) Product(_ context.Context, productID, _ string) (Item, error) {
	item, ok := f.products[productID]
	if !ok {
		return Item{}, fmt.Errorf("%w: product %s", httpx.ErrNotFound, productID)
	}
	return item, nil
}

func (f *fakeRepo) FindItemByProduct(_ context.Context, orderID, productID string, orderClientID *string) (Item, bool, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return Item{}, false, nil
	}
	for _, item := range order.Items {
		if item.ProductID != nil && *item.ProductID == productID && equalPtr(item.OrderClientID, orderClientID) {
			return item, true, nil
		}
	}
	return Item{}, false, nil
}

func (f *fakeRepo) InsertItem(_ context.Context, orderID string, item Item) (Item, error) {
	item.ID = uuid.NewString()
	f.orders[orderID].Items = append(f.orders[orderID].Items, item)
	return item, nil
}

func (f *fakeRepo) BumpItemQuantity(_ context.Context, itemID string, by int64, note *string) error {
	for _, order := range f.orders {
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				order.Items[i].Quantity += by
				if note != nil {
					order.Items[i].Note = note
				}
				return nil
			}
		}
	}
	return fmt.Errorf("%w: order item", httpx.ErrNotFound)
}

func (f *fakeRepo) SetStatus(ctx context.Context, orderID string, status Status) error {
	return f.UpdateStatus(ctx, orderID, "", status)
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func TestCreateSnapshotsPricesFromCatalog(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	repo.addProduct("prod-b", "Soda", "5.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{
			{ProductID: "prod-a", Quantity: 2},
			{ProductID: "prod-b", Quantity: 1},
		},
	}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, StatusOpen, order.Status)
	require.Len(t, order.Items, 2)
	require.True(t, order.Total().Equal(decimal.RequireFromString("25.00")))
	require.Equal(t, "Burger", order.Items[0].ProductName)
}

func TestCreateWithUnknownProductFails(t *testing.T) {
	svc := NewService(newFakeRepo(), nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "missing", Quantity: 1}},
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateLinksExistingClientByPhone(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	repo.clients["client-1"] = fakeClient{id: "client-1", name: "Ana", phone: "551199"}
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Client: &ClientInfo{Phone: "551199"},
		Items:  []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, order.Clients, 1)
	require.Equal(t, "Ana", order.Clients[0].Name)
	require.Nil(t, order.ClientsData)
}

func TestCreateRegistersNewClientWhenNameGiven(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Client: &ClientInfo{Name: "Bruno", Phone: "551188"},
		Items:  []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, order.Clients, 1)
	require.Len(t, repo.clients, 1)
}

func TestCreateTagsItemsWithOrderClient(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Client: &ClientInfo{Name: "Bruno", Phone: "551188"},
		Items:  []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, order.Clients, 1)
	require.Len(t, order.Items, 1)
	require.NotNil(t, order.Items[0].OrderClientID)
	require.Equal(t, order.Clients[0].ID, *order.Items[0].OrderClientID)
}

func TestCreateFailsForUnknownPhoneWithoutName(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Client: &ClientInfo{Phone: "551177"},
		Items:  []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestCreateEmbedsClientDataWithoutPhone(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Client: &ClientInfo{Name: "Mesa 4"},
		Items:  []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Empty(t, order.Clients)
	require.NotNil(t, order.ClientsData)
	require.Equal(t, "Mesa 4", *order.ClientsData)
}

func TestAddItemsIncrementsExistingLine(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 2}},
	}, "profile-1")
	require.NoError(t, err)

	updated, err := svc.AddItems(context.Background(), order.ID, AddItemsRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 3}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, int64(5), updated.Items[0].Quantity)
}

func TestAddItemsReplacesNoteOnIncrement(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	first := "sem cebola"
	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1, Note: &first}},
	}, "profile-1")
	require.NoError(t, err)

	second := "bem passado"
	updated, err := svc.AddItems(context.Background(), order.ID, AddItemsRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1, Note: &second}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.NotNil(t, updated.Items[0].Note)
	require.Equal(t, "bem passado", *updated.Items[0].Note)

	// Re-adding without a note keeps the last one.
	again, err := svc.AddItems(context.Background(), order.ID, AddItemsRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), again.Items[0].Quantity)
	require.NotNil(t, again.Items[0].Note)
	require.Equal(t, "bem passado", *again.Items[0].Note)
}

func TestAddItemsSnapshotsPriceAtAddTime(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)

	// Catalog price changes after the first line was written.
	repo.addProduct("prod-b", "Fries", "12.00")
	updated, err := svc.AddItems(context.Background(), order.ID, AddItemsRequest{
		Items: []ItemInput{{ProductID: "prod-b", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	require.True(t, updated.Items[1].Price.Equal(decimal.RequireFromString("12.00")))
}

func TestAddItemsRejectsNonOpenOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)
	repo.orders[order.ID].Status = StatusClosed

	_, err = svc.AddItems(context.Background(), order.ID, AddItemsRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestArchiveAndReopen(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)

	archived, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: StatusArchived}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, StatusArchived, archived.Status)

	_, err = svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: StatusArchived}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)

	reopened, err := svc.UpdateStatus(context.Background(), order.ID, UpdateStatusRequest{Status: StatusOpen}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, StatusOpen, reopened.Status)
}

func TestOrdersAreOwnerScoped(t *testing.T) {
	repo := newFakeRepo()
	repo.addProduct("prod-a", "Burger", "10.00")
	svc := NewService(repo, nil)

	order, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemInput{{ProductID: "prod-a", Quantity: 1}},
	}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), order.ID, "profile-2")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

package payments

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

type fakeOrder struct {
	id      string
	status  orders.Status
	ownerID string
	clients map[string]bool
	items   []Line
}

type fakeRepo struct {
	orders   map[string]*fakeOrder
	payments map[string]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[string]*fakeOrder{}, payments: map[string]*Payment{}}
}

func (f *fakeRepo) addOrder(id string, status orders.Status, items ...Line) {
	order := &fakeOrder{id: id, status: status, ownerID: "profile-1", clients: map[string]bool{}, items: items}
	for _, item := range items {
		if item.OrderClientID != nil {
			order.clients[*item.OrderClientID] = true
		}
	}
	f.orders[id] = order
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) ListByOrder(_ context.Context, orderID, _ string) ([]Payment, error) {
	return f.paymentsFor(orderID), nil
}

func (f *fakeRepo) OrderForUpdate(_ context.Context, orderID, ownerID string) (OrderSummary, error) {
	order, ok := f.orders[orderID]
	if !ok || order.ownerID != ownerID {
		return OrderSummary{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	return OrderSummary{ID: order.id, Status: order.status, Items: order.items}, nil
}

func (f *fakeRepo) OrderClientBelongs(_ context.Context, orderID, orderClientID string) (bool, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	return order.clients[orderClientID], nil
}

func (f *fakeRepo) ListPayments(_ context.Context, orderID string) ([]Payment, error) {
	return f.paymentsFor(orderID), nil
}

func (f *fakeRepo) InsertPayment(_ context.Context, payment Payment) (Payment, error) {
	payment.ID = uuid.NewString()
	stored := payment
	f.payments[payment.ID] = &stored
	return payment, nil
}

func (f *fakeRepo) PaymentForUpdate(_ context.Context, paymentID, _ string) (Payment, error) {
	payment, ok := f.payments[paymentID]
	if !ok {
		return Payment{}, fmt.Errorf("%w: payment", httpx.ErrNotFound)
	}
	return *payment, nil
}

func (f *fakeRepo) SetPaymentStatus(_ context.Context, paymentID string, status Status) error {
	f.payments[paymentID].Status = status
	return nil
}

func (f *fakeRepo) SetOrderStatus(_ context.Context, orderID string, status orders.Status) error {
	f.orders[orderID].status = status
	return nil
}

func (f *fakeRepo) paymentsFor(orderID string) []Payment {
	out := []Payment{}
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			out = append(out, *payment)
		}
	}
	return out
}

func line(price string, qty int64, scope *string) Line {
	return Line{Price: decimal.RequireFromString(price), Quantity: qty, OrderClientID: scope}
}

func TestFullPaymentClosesOrder(t *testing.T) {
	repo := newFakeRepo()
	// 10.00 x 2 + 5.00 x 1 = 25.00
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 2, nil), line("5.00", 1, nil))
	svc := NewService(repo, nil)

	payment, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("25.00"),
		Method: MethodCash,
	}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, payment.Status)
	require.Equal(t, orders.StatusClosed, repo.orders["order-1"].status)
}

func TestCancellingPaymentReopensOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 2, nil), line("5.00", 1, nil))
	svc := NewService(repo, nil)

	payment, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("25.00"),
		Method: MethodCash,
	}, "profile-1")
	require.NoError(t, err)
	require.Equal(t, orders.StatusClosed, repo.orders["order-1"].status)

	cancelled, err := svc.Cancel(context.Background(), payment.ID, "profile-1")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, orders.StatusOpen, repo.orders["order-1"].status)
}

func TestPaymentCannotExceedRemainingBalance(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 1, nil))
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("6.00"),
		Method: MethodCash,
	}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("5.00"),
		Method: MethodPix,
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCancelledPaymentsFreeUpBalance(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 1, nil))
	svc := NewService(repo, nil)

	payment, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("10.00"),
		Method: MethodCard,
	}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), payment.ID, "profile-1")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("10.00"),
		Method: MethodCash,
	}, "profile-1")
	require.NoError(t, err)
}

func TestScopedPaymentValidatesAgainstSubClientItems(t *testing.T) {
	scope := "sub-1"
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen,
		line("10.00", 2, nil),
		line("5.00", 2, &scope))
	svc := NewService(repo, nil)

	// Sub-client owes 10.00; paying 12.00 into that scope must fail even
	// though the whole order is worth 30.00.
	_, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount:        decimal.RequireFromString("12.00"),
		Method:        MethodCash,
		OrderClientID: &scope,
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), "order-1", CreateRequest{
		Amount:        decimal.RequireFromString("10.00"),
		Method:        MethodCash,
		OrderClientID: &scope,
	}, "profile-1")
	require.NoError(t, err)
	// Whole order is still not fully paid.
	require.Equal(t, orders.StatusOpen, repo.orders["order-1"].status)
}

func TestScopedPaymentRequiresClientOnOrder(t *testing.T) {
	scope := "sub-1"
	stranger := "sub-2"
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 1, &scope))
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount:        decimal.RequireFromString("10.00"),
		Method:        MethodCash,
		OrderClientID: &stranger,
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestArchivedOrderRejectsPayments(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusArchived, line("10.00", 1, nil))
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("10.00"),
		Method: MethodCash,
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestCancelRequiresCompletedStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 1, nil))
	svc := NewService(repo, nil)

	payment, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.RequireFromString("10.00"),
		Method: MethodCash,
	}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), payment.ID, "profile-1")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), payment.ID, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestRejectsNonPositiveAmount(t *testing.T) {
	repo := newFakeRepo()
	repo.addOrder("order-1", orders.StatusOpen, line("10.00", 1, nil))
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), "order-1", CreateRequest{
		Amount: decimal.Zero,
		Method: MethodCash,
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

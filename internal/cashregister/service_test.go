package cashregister

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

type fakeRepo struct {
	registers    map[string]*Register
	transactions []Transaction
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{registers: map[string]*Register{}}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) Get(_ context.Context, registerID, ownerID string) (Register, error) {
	register, ok := f.registers[registerID]
	if !ok || register.OwnerID != ownerID {
		return Register{}, fmt.Errorf("%w: cash register", httpx.ErrNotFound)
	}
	return *register, nil
}

func (f *fakeRepo) FindOpen(_ context.Context, ownerID string) (Register, error) {
	for _, register := range f.registers {
		if register.OwnerID == ownerID && register.Open() {
			return *register, nil
		}
	}
	return Register{}, fmt.Errorf("%w: cash register", httpx.ErrNotFound)
}

func (f *fakeRepo) List(_ context.Context, ownerID string) ([]Register, error) {
	out := []Register{}
	for _, register := range f.registers {
		if register.OwnerID == ownerID {
			out = append(out, *register)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListTransactions(_ context.Context, registerID, _ string) ([]Transaction, error) {
	out := []Transaction{}
	for _, transaction := range f.transactions {
		if transaction.RegisterID == registerID {
			out = append(out, transaction)
		}
	}
	return out, nil
}

func (f *fakeRepo) SumsByOrigin(_ context.Context, registerID string) (ReportTotals, error) {
	totals := ReportTotals{Orders: decimal.Zero, Expenses: decimal.Zero, Increments: decimal.Zero}
	for _, transaction := range f.transactions {
		if transaction.RegisterID != registerID {
			continue
		}
		switch transaction.OriginType {
		case OriginPayment:
			totals.Orders = totals.Orders.Add(transaction.Amount)
		case OriginExpense:
			totals.Expenses = totals.Expenses.Add(transaction.Amount)
		case OriginIncrement:
			totals.Increments = totals.Increments.Add(transaction.Amount)
		}
	}
	return totals, nil
}

func (f *fakeRepo) Sales(_ context.Context, _, _ string) ([]Sale, error) {
	return []Sale{}, nil
}

func (f *fakeRepo) OpenForUpdate(ctx context.Context, ownerID string) (Register, error) {
	return f.FindOpen(ctx, ownerID)
}

func (f *fakeRepo) GetForUpdate(ctx context.Context, registerID, ownerID string) (Register, error) {
	return f.Get(ctx, registerID, ownerID)
}

func (f *fakeRepo) HasOpen(ctx context.Context, ownerID string) (bool, error) {
	_, err := f.FindOpen(ctx, ownerID)
	return err == nil, nil
}

func (f *fakeRepo) Insert(_ context.Context, register Register) (Register, error) {
	register.ID = uuid.NewString()
	register.OpenedAt = time.Now()
	stored := register
	f.registers[register.ID] = &stored
	return register, nil
}

func (f *fakeRepo) InsertTransaction(_ context.Context, transaction Transaction) (Transaction, error) {
	transaction.ID = uuid.NewString()
	transaction.CreatedAt = time.Now()
	f.transactions = append(f.transactions, transaction)
	return transaction, nil
}

func (f *fakeRepo) SetRegisteredPayments(_ context.Context, registerID string, payments map[string]decimal.Decimal, closedAmount decimal.Decimal) error {
	register := f.registers[registerID]
	register.RegisteredPayments = payments
	register.ClosedAmount = &closedAmount
	return nil
}

func (f *fakeRepo) SetClosedAt(_ context.Context, registerID string, closedAt time.Time) error {
	f.registers[registerID].ClosedAt = &closedAt
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestOpenSetsExpectedToOpenedAmount(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)
	require.True(t, register.OpenedAmount.Equal(dec("100.00")))
	require.True(t, register.ExpectedAmount.Equal(dec("100.00")))
	require.Empty(t, register.RegisteredPayments)
	require.True(t, register.Open())
}

func TestSecondOpenRegisterRejected(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, time.UTC)

	_, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Open(context.Background(), OpenRequest{Amount: dec("50.00")}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestDifferentOwnersMayEachHaveAnOpenRegister(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, time.UTC)

	_, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-2")
	require.NoError(t, err)
}

func TestCreateTransactionRequiresOpenRegister(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, time.UTC)

	_, err := svc.CreateTransaction(context.Background(), CreateTransactionRequest{
		OriginType: OriginIncrement,
		Amount:     dec("20.00"),
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestClosedRegisterRejectsTransactions(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)

	_, err = svc.CreateTransaction(context.Background(), CreateTransactionRequest{
		OriginType: OriginIncrement,
		Amount:     dec("20.00"),
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestReportBeforeClose(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)

	paymentID := uuid.NewString()
	method := "CASH"
	_, err = repo.InsertTransaction(context.Background(), Transaction{
		RegisterID:    register.ID,
		OriginType:    OriginPayment,
		OriginID:      &paymentID,
		Amount:        dec("50.00"),
		PaymentMethod: &method,
	})
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)
	require.True(t, report.Totals.Orders.Equal(dec("50.00")))
	require.True(t, report.ExpectedAmount.Equal(dec("100.00")))
	require.Nil(t, report.Difference)
}

func TestReportAfterCloseComputesDifference(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)

	_, err = svc.RegisterPayments(context.Background(), register.ID, RegisterPaymentsRequest{
		Payments: map[string]decimal.Decimal{"CASH": dec("80.00"), "CARD": dec("15.00")},
	}, "profile-1")
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)

	report, err := svc.Report(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)
	require.NotNil(t, report.ClosedAmount)
	require.True(t, report.ClosedAmount.Equal(dec("95.00")))
	require.NotNil(t, report.Difference)
	require.True(t, report.Difference.Equal(dec("-5.00")))
}

func TestCloseIsIrreversible(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)
	_, err = svc.Close(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), register.ID, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)

	_, err = svc.RegisterPayments(context.Background(), register.ID, RegisterPaymentsRequest{
		Payments: map[string]decimal.Decimal{"CASH": dec("10.00")},
	}, "profile-1")
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestPostPaymentTransactionsWritesOnePostingPerPayment(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, time.UTC)

	register, err := svc.Open(context.Background(), OpenRequest{Amount: dec("100.00")}, "profile-1")
	require.NoError(t, err)

	err = svc.PostPaymentTransactions(context.Background(), repo, "profile-1", []PaymentPosting{
		{PaymentID: "pay-1", Amount: dec("20.00"), Method: "CASH"},
		{PaymentID: "pay-2", Amount: dec("5.00"), Method: "PIX"},
	})
	require.NoError(t, err)

	transactions, err := repo.ListTransactions(context.Background(), register.ID, "profile-1")
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	require.Equal(t, OriginPayment, transactions[0].OriginType)
	require.Equal(t, "pay-1", *transactions[0].OriginID)
}

func TestSaleClientNamePrefersEmbeddedName(t *testing.T) {
	embedded := "Mesa 4"
	linked := "Ana"
	empty := ""

	require.Equal(t, "Mesa 4", saleClientName(&embedded, &linked))
	require.Equal(t, "Ana", saleClientName(nil, &linked))
	require.Equal(t, "Ana", saleClientName(&empty, &linked))
	require.Equal(t, "Mesa 4", saleClientName(&embedded, nil))
	require.Equal(t, "", saleClientName(nil, nil))
}

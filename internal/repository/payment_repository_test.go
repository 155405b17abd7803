package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-api/internal/config"
	"github.com/akylbek/payment-system/payment-api/internal/models"
)

func newTestRepository(t *testing.T) *PaymentRepository {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, config.DriverSQLite, ":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewPaymentRepository(db, config.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, repo.InitDB(ctx))
	return repo
}

func makePayment(transactionID string) *models.Payment {
	return &models.Payment{
		TransactionID: transactionID,
		Amount:        "10.50",
		Currency:      "EUR",
		Status:        models.StatusPaid,
		PaymentMethod: models.MethodIdeal,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := makePayment("TX-CREATE")
	require.NoError(t, repo.Create(ctx, p))
	assert.NotZero(t, p.ID)

	got, err := repo.GetByTransactionID(ctx, "TX-CREATE")
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestCreate_AssignsIncreasingIDs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, second := makePayment("TX-1"), makePayment("TX-2")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Greater(t, second.ID, first.ID)
}

func TestCreate_DuplicateTransactionID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makePayment("TX-DUP")))
	err := repo.Create(ctx, makePayment("TX-DUP"))
	assert.ErrorIs(t, err, ErrDuplicateTransactionID)
}

func TestCreate_RejectsStatusOutsideEnumeration(t *testing.T) {
	repo := newTestRepository(t)
	p := makePayment("TX-BAD-STATUS")
	p.Status = models.Status("LOST")

	err := repo.Create(context.Background(), p)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateTransactionID)
}

func TestGet_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.GetByTransactionID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	payments, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, payments)

	for _, id := range []string{"TX-A", "TX-B", "TX-C"} {
		require.NoError(t, repo.Create(ctx, makePayment(id)))
	}

	payments, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, payments, 3)
	assert.Equal(t, "TX-A", payments[0].TransactionID)
	assert.Equal(t, "TX-C", payments[2].TransactionID)
}

func TestUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := makePayment("TX-UPDATE")
	require.NoError(t, repo.Create(ctx, p))

	p.Status = models.StatusChargeback
	p.Amount = "11.00"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByTransactionID(ctx, "TX-UPDATE")
	require.NoError(t, err)
	assert.Equal(t, models.StatusChargeback, got.Status)
	assert.Equal(t, "11.00", got.Amount)
	assert.Equal(t, p.ID, got.ID)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Update(context.Background(), makePayment("missing"))
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makePayment("TX-DELETE")))
	require.NoError(t, repo.Delete(ctx, "TX-DELETE"))

	_, err := repo.GetByTransactionID(ctx, "TX-DELETE")
	assert.ErrorIs(t, err, ErrPaymentNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "TX-DELETE"), ErrPaymentNotFound)
}

func TestInitDB_IsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	assert.NoError(t, repo.InitDB(context.Background()))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn", 1)
	assert.Error(t, err)

	_, err = NewPaymentRepository(nil, "mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := dialects[config.DriverPostgres]
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.rebind("UPDATE t SET a = ? WHERE b = ?"))

	lite := dialects[config.DriverSQLite]
	assert.Equal(t, "SELECT ? FROM t", lite.rebind("SELECT ? FROM t"))
}

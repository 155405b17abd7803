package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-api/internal/apierror"
	"github.com/akylbek/payment-system/payment-api/internal/events"
	"github.com/akylbek/payment-system/payment-api/internal/models"
	"github.com/akylbek/payment-system/payment-api/internal/repository"
)

var errStoreDown = errors.New("connection refused")

// mockRepository implements interfaces.PaymentRepository for testing
type mockRepository struct {
	CreateFunc func(ctx context.Context, p *models.Payment) error
	GetFunc    func(ctx context.Context, transactionID string) (*models.Payment, error)
	ListFunc   func(ctx context.Context) ([]*models.Payment, error)
	UpdateFunc func(ctx context.Context, p *models.Payment) error
	DeleteFunc func(ctx context.Context, transactionID string) error
}

func (m *mockRepository) Create(ctx context.Context, p *models.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	p.ID = 1
	return nil
}

func (m *mockRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, transactionID)
	}
	return nil, repository.ErrPaymentNotFound
}

func (m *mockRepository) List(ctx context.Context) ([]*models.Payment, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockRepository) Update(ctx context.Context, p *models.Payment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, transactionID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, transactionID)
	}
	return repository.ErrPaymentNotFound
}

func (m *mockRepository) Ping(context.Context) error { return nil }

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, events.PaymentEvent) error {
	p.calls++
	return errors.New("broker unavailable")
}

func (p *failingPublisher) Close() error { return nil }

func newEngine(h *PaymentHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(apierror.Handler())
	r.POST("/payment", h.CreatePayment)
	r.GET("/payment", h.ListPayments)
	r.GET("/payment/:transaction_id", h.GetPayment)
	r.PATCH("/payment/:transaction_id", h.UpdatePayment)
	r.DELETE("/payment/:transaction_id", h.DeletePayment)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{"transaction_id": "TX1", "amount": "1.00", "currency": "EUR", "payment_method": "VISA"}`

func TestCreatePayment_StoreFailureIs500(t *testing.T) {
	repo := &mockRepository{
		CreateFunc: func(context.Context, *models.Payment) error { return errStoreDown },
	}
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodPost, "/payment", validBody)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error_message": "Internal server error.", "transaction_id": null}`, w.Body.String())
}

func TestCreatePayment_PersistsCreatedStatus(t *testing.T) {
	var stored *models.Payment
	repo := &mockRepository{
		CreateFunc: func(_ context.Context, p *models.Payment) error {
			p.ID = 42
			stored = p
			return nil
		},
	}
	body := `{"transaction_id": "TX1", "amount": "1.00", "currency": "EUR", "payment_method": "VISA", "status": "REFUNDED"}`
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodPost, "/payment", body)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusCreated, stored.Status)
	assert.JSONEq(t, `{"id": 42, "transaction_id": "TX1", "amount": "1.00", "currency": "EUR", "status": "CREATED", "payment_method": "VISA"}`, w.Body.String())
}

func TestCreatePayment_PublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &failingPublisher{}
	w := perform(newEngine(NewPaymentHandler(&mockRepository{}, pub)), http.MethodPost, "/payment", validBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, pub.calls)
}

func TestUpdatePayment_ValidationRunsBeforeLookup(t *testing.T) {
	looked := false
	repo := &mockRepository{
		GetFunc: func(context.Context, string) (*models.Payment, error) {
			looked = true
			return nil, repository.ErrPaymentNotFound
		},
	}
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodPatch, "/payment/TX9", `{"currency": "EURO"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, looked)
	assert.JSONEq(t, `{"error_message": {"currency": ["Length must be between 3 and 3."]}, "transaction_id": "TX9"}`, w.Body.String())
}

func TestUpdatePayment_RowVanishedIs404(t *testing.T) {
	repo := &mockRepository{
		GetFunc: func(context.Context, string) (*models.Payment, error) {
			return &models.Payment{ID: 1, TransactionID: "TX1", Amount: "1", Currency: "EUR",
				Status: models.StatusPaid, PaymentMethod: models.MethodVisa}, nil
		},
		UpdateFunc: func(context.Context, *models.Payment) error { return repository.ErrPaymentNotFound },
	}
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodPatch, "/payment/TX1", `{"status": "PAID"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPayment_StoreFailureIs500(t *testing.T) {
	repo := &mockRepository{
		GetFunc: func(context.Context, string) (*models.Payment, error) { return nil, errStoreDown },
	}
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodGet, "/payment/TX1", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListPayments_StoreFailureIs500(t *testing.T) {
	repo := &mockRepository{
		ListFunc: func(context.Context) ([]*models.Payment, error) { return nil, errStoreDown },
	}
	w := perform(newEngine(NewPaymentHandler(repo, nil)), http.MethodGet, "/payment", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestListPayments_EmptyStore(t *testing.T) {
	w := perform(newEngine(NewPaymentHandler(&mockRepository{}, nil)), http.MethodGet, "/payment", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"payments": []}`, w.Body.String())
}

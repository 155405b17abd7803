package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-api/internal/apierror"
	"github.com/akylbek/payment-system/payment-api/internal/events"
	"github.com/akylbek/payment-system/payment-api/internal/interfaces"
	"github.com/akylbek/payment-system/payment-api/internal/repository"
	"github.com/akylbek/payment-system/payment-api/internal/serialization"
	"github.com/akylbek/payment-system/payment-api/internal/telemetry"
)

const (
	MsgNoJSON          = "No json request received."
	MsgNotFound        = "Payment not found."
	MsgDuplicateTxID   = "Payment with this transaction_id already exists."
	transactionIDParam = "transaction_id"
)

type PaymentHandler struct {
	repo      interfaces.PaymentRepository
	publisher events.Publisher
}

func NewPaymentHandler(repo interfaces.PaymentRepository, publisher events.Publisher) *PaymentHandler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &PaymentHandler{
		repo:      repo,
		publisher: publisher,
	}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	ctx := c.Request.Context()

	data, ok := readBody(c)
	if !ok {
		fail(c, "create", apierror.InvalidRequest(MsgNoJSON, nil))
		return
	}

	input, errs := serialization.LoadPayment(data)
	if len(errs) > 0 {
		telemetry.Logger.Warn("Invalid payment request", zap.Any("errors", errs))
		fail(c, "create", apierror.InvalidRequest(errs, suppliedTransactionID(data)))
		return
	}

	payment := input.NewPayment()
	if err := h.repo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrDuplicateTransactionID) {
			fail(c, "create", apierror.InvalidRequest(
				serialization.FieldErrors{serialization.FieldTransactionID: {MsgDuplicateTxID}},
				&payment.TransactionID,
			))
			return
		}
		telemetry.Logger.Error("Failed to save payment to database",
			zap.String("transaction_id", payment.TransactionID),
			zap.Error(err),
		)
		fail(c, "create", err)
		return
	}

	resp := serialization.Dump(payment)
	h.publish(ctx, events.New(events.PaymentCreated, payment.TransactionID, &resp))

	telemetry.Logger.Info("Payment created",
		zap.Int64("id", payment.ID),
		zap.String("transaction_id", payment.TransactionID),
	)
	telemetry.RecordPaymentOperation("create", telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) GetPayment(c *gin.Context) {
	transactionID := c.Param(transactionIDParam)

	payment, err := h.repo.GetByTransactionID(c.Request.Context(), transactionID)
	if err != nil {
		fail(c, "get", lookupError(err, transactionID))
		return
	}

	telemetry.RecordPaymentOperation("get", telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, serialization.Dump(payment))
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	payments, err := h.repo.List(c.Request.Context())
	if err != nil {
		telemetry.Logger.Error("Failed to list payments", zap.Error(err))
		fail(c, "list", err)
		return
	}

	telemetry.RecordPaymentOperation("list", telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, serialization.DumpList(payments))
}

// UpdatePayment applies the supplied fields to an existing payment. Only
// errors for fields present in the body are reported.
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	ctx := c.Request.Context()
	transactionID := c.Param(transactionIDParam)

	data, ok := readBody(c)
	if !ok {
		fail(c, "update", apierror.InvalidRequest(MsgNoJSON, nil))
		return
	}

	input, errs := serialization.LoadPatch(data)
	if len(errs) > 0 {
		fail(c, "update", apierror.InvalidRequest(errs, &transactionID))
		return
	}

	payment, err := h.repo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		fail(c, "update", lookupError(err, transactionID))
		return
	}

	input.ApplyTo(payment)
	if err := h.repo.Update(ctx, payment); err != nil {
		fail(c, "update", lookupError(err, transactionID))
		return
	}

	resp := serialization.Dump(payment)
	h.publish(ctx, events.New(events.PaymentUpdated, transactionID, &resp))

	telemetry.Logger.Info("Payment updated",
		zap.String("transaction_id", transactionID),
		zap.String("status", resp.Status),
	)
	telemetry.RecordPaymentOperation("update", telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	ctx := c.Request.Context()
	transactionID := c.Param(transactionIDParam)

	if err := h.repo.Delete(ctx, transactionID); err != nil {
		fail(c, "delete", lookupError(err, transactionID))
		return
	}

	h.publish(ctx, events.New(events.PaymentDeleted, transactionID, nil))

	telemetry.Logger.Info("Payment deleted", zap.String("transaction_id", transactionID))
	telemetry.RecordPaymentOperation("delete", telemetry.OutcomeSuccess)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// publish never fails the request; the write is already committed.
func (h *PaymentHandler) publish(ctx context.Context, event events.PaymentEvent) {
	if err := h.publisher.Publish(ctx, event); err != nil {
		telemetry.Logger.Error("Failed to publish payment event",
			zap.String("transaction_id", event.TransactionID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
	}
}

// readBody decodes the request body as a non-empty JSON object.
func readBody(c *gin.Context) (map[string]any, bool) {
	raw, err := c.GetRawData()
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func suppliedTransactionID(data map[string]any) *string {
	if s, ok := data[serialization.FieldTransactionID].(string); ok {
		return &s
	}
	return nil
}

func lookupError(err error, transactionID string) error {
	if errors.Is(err, repository.ErrPaymentNotFound) {
		return apierror.ResourceNotFound(MsgNotFound, &transactionID)
	}
	return err
}

func fail(c *gin.Context, operation string, err error) {
	var apiErr *apierror.Error
	switch {
	case !errors.As(err, &apiErr):
		telemetry.RecordPaymentOperation(operation, telemetry.OutcomeError)
	case apiErr.StatusCode == http.StatusNotFound:
		telemetry.RecordPaymentOperation(operation, telemetry.OutcomeNotFound)
	default:
		telemetry.RecordPaymentOperation(operation, telemetry.OutcomeInvalid)
	}
	_ = c.Error(err)
}

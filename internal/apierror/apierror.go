// Package apierror defines the errors a handler can return to a client and the
// gin middleware that renders them.
package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-api/internal/telemetry"
)

const MsgInternal = "Internal server error."

// Error is a client-visible failure. Message is either a string or a
// per-field error mapping.
type Error struct {
	Message       any
	TransactionID *string
	StatusCode    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %v", e.StatusCode, e.Message)
}

// InvalidRequest reports a malformed body or failed field validation.
func InvalidRequest(message any, transactionID *string) *Error {
	return &Error{Message: message, TransactionID: transactionID, StatusCode: http.StatusBadRequest}
}

// ResourceNotFound reports a lookup that matched nothing.
func ResourceNotFound(message any, transactionID *string) *Error {
	return &Error{Message: message, TransactionID: transactionID, StatusCode: http.StatusNotFound}
}

type Response struct {
	ErrorMessage  any     `json:"error_message"`
	TransactionID *string `json:"transaction_id"`
}

// Handler renders the last error a handler attached with c.Error. Errors that
// are not *Error become a 500.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *Error
		if errors.As(err, &apiErr) {
			c.JSON(apiErr.StatusCode, Response{
				ErrorMessage:  apiErr.Message,
				TransactionID: apiErr.TransactionID,
			})
			return
		}

		telemetry.Logger.Error("Unhandled request error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, Response{ErrorMessage: MsgInternal})
	}
}

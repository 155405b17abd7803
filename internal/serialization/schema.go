// Package serialization maps request JSON to validated payment input and
// payment records back to response JSON.
package serialization

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-api/internal/models"
)

const (
	MsgMissing        = "Missing data for required field."
	MsgNull           = "Field may not be null."
	MsgNotString      = "Not a valid string."
	MsgInvalid        = "Invalid value."
	MsgCurrencyLength = "Length must be between 3 and 3."
)

const (
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldCurrency      = "currency"
	FieldStatus        = "status"
	FieldPaymentMethod = "payment_method"
)

const currencyLength = 3

// FieldErrors maps a request field to the messages describing what is wrong with it.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Only returns the errors whose field is a key of data.
func (fe FieldErrors) Only(data map[string]any) FieldErrors {
	out := FieldErrors{}
	for field, msgs := range fe {
		if _, ok := data[field]; ok {
			out[field] = msgs
		}
	}
	return out
}

// PaymentInput holds the validated fields of a request body. A nil field was
// not supplied or did not validate.
type PaymentInput struct {
	TransactionID *string
	Amount        *string
	Currency      *string
	Status        *models.Status
	PaymentMethod *models.PaymentMethod
}

// NewPayment builds a record from a create request. Status is always CREATED.
func (in PaymentInput) NewPayment() *models.Payment {
	p := &models.Payment{Status: models.StatusCreated}
	if in.TransactionID != nil {
		p.TransactionID = *in.TransactionID
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.PaymentMethod != nil {
		p.PaymentMethod = *in.PaymentMethod
	}
	return p
}

// ApplyTo overwrites the supplied fields of p. The transaction id is the
// lookup key and is never rewritten.
func (in PaymentInput) ApplyTo(p *models.Payment) {
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Currency != nil {
		p.Currency = *in.Currency
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.PaymentMethod != nil {
		p.PaymentMethod = *in.PaymentMethod
	}
}

// LoadPayment validates a create request body. Status is not read.
func LoadPayment(data map[string]any) (PaymentInput, FieldErrors) {
	return load(data, false)
}

// LoadPatch validates an update request body and reports only the errors of
// fields present in data, so required fields the caller left out do not fail
// the update.
func LoadPatch(data map[string]any) (PaymentInput, FieldErrors) {
	in, errs := load(data, true)
	return in, errs.Only(data)
}

func load(data map[string]any, withStatus bool) (PaymentInput, FieldErrors) {
	var in PaymentInput
	errs := FieldErrors{}

	if s, ok := stringField(data, FieldTransactionID, true, errs); ok {
		in.TransactionID = &s
	}

	if s, ok := stringField(data, FieldAmount, true, errs); ok {
		if isDecimal(s) {
			in.Amount = &s
		} else {
			errs.add(FieldAmount, MsgInvalid)
		}
	}

	if s, ok := stringField(data, FieldCurrency, true, errs); ok {
		if utf8.RuneCountInString(s) == currencyLength {
			in.Currency = &s
		} else {
			errs.add(FieldCurrency, MsgCurrencyLength)
		}
	}

	if s, ok := stringField(data, FieldPaymentMethod, true, errs); ok {
		if m, valid := models.ParsePaymentMethod(s); valid {
			in.PaymentMethod = &m
		} else {
			errs.add(FieldPaymentMethod, MsgInvalid)
		}
	}

	if withStatus {
		if s, ok := stringField(data, FieldStatus, false, errs); ok {
			if st, valid := models.ParseStatus(s); valid {
				in.Status = &st
			} else {
				errs.add(FieldStatus, MsgInvalid)
			}
		}
	}

	return in, errs
}

// stringField reads data[field] as a string, recording an error when the
// value is missing (and required), null or of another JSON type.
func stringField(data map[string]any, field string, required bool, errs FieldErrors) (string, bool) {
	raw, present := data[field]
	if !present {
		if required {
			errs.add(field, MsgMissing)
		}
		return "", false
	}
	if raw == nil {
		errs.add(field, MsgNull)
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		errs.add(field, MsgNotString)
		return "", false
	}
	return s, true
}

func isDecimal(s string) bool {
	_, err := decimal.NewFromString(s)
	return err == nil
}

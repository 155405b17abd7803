package serialization

import "github.com/akylbek/payment-system/payment-api/internal/models"

type PaymentResponse struct {
	ID            int64  `json:"id"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	PaymentMethod string `json:"payment_method"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
}

func Dump(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		TransactionID: p.TransactionID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status.String(),
		PaymentMethod: p.PaymentMethod.String(),
	}
}

// DumpList never yields a null payments array.
func DumpList(payments []*models.Payment) PaymentListResponse {
	out := PaymentListResponse{Payments: make([]PaymentResponse, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, Dump(p))
	}
	return out
}

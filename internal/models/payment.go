package models

type Status string

const (
	StatusPaid       Status = "PAID"
	StatusChargeback Status = "CHARGEBACK"
	StatusRefused    Status = "REFUSED"
	StatusError      Status = "ERROR"
	StatusPending    Status = "PENDING"
	StatusRefunded   Status = "REFUNDED"
	StatusCreated    Status = "CREATED"
)

var statuses = map[string]Status{
	string(StatusPaid):       StatusPaid,
	string(StatusChargeback): StatusChargeback,
	string(StatusRefused):    StatusRefused,
	string(StatusError):      StatusError,
	string(StatusPending):    StatusPending,
	string(StatusRefunded):   StatusRefunded,
	string(StatusCreated):    StatusCreated,
}

// ParseStatus returns the Status whose wire value is s.
func ParseStatus(s string) (Status, bool) {
	st, ok := statuses[s]
	return st, ok
}

func (s Status) String() string {
	return string(s)
}

type PaymentMethod string

const (
	MethodVisa       PaymentMethod = "VISA"
	MethodMastercard PaymentMethod = "MASTERCARD"
	MethodIdeal      PaymentMethod = "IDEAL"
	MethodPaypal     PaymentMethod = "PAYPAL"
	MethodGiropay    PaymentMethod = "GIROPAY"
)

var paymentMethods = map[string]PaymentMethod{
	string(MethodVisa):       MethodVisa,
	string(MethodMastercard): MethodMastercard,
	string(MethodIdeal):      MethodIdeal,
	string(MethodPaypal):     MethodPaypal,
	string(MethodGiropay):    MethodGiropay,
}

// ParsePaymentMethod returns the PaymentMethod whose wire value is s.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m, ok := paymentMethods[s]
	return m, ok
}

func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is a stored payment record. ID is assigned by the store.
type Payment struct {
	ID            int64
	TransactionID string
	Amount        string
	Currency      string
	Status        Status
	PaymentMethod PaymentMethod
}

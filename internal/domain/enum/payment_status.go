package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentStatus represents how much of a sale has been paid
type PaymentStatus int

const (
	PaymentStatusDue     PaymentStatus = 0
	PaymentStatusPartial PaymentStatus = 1
	PaymentStatusPaid    PaymentStatus = 2
)

// DerivePaymentStatus computes the payment status from paid and due amounts (in cents).
// A fully settled sale is Paid, an untouched one is Due, anything in between Partial.
func DerivePaymentStatus(paidCents, dueCents int64) PaymentStatus {
	if dueCents == 0 {
		return PaymentStatusPaid
	}
	if paidCents == 0 {
		return PaymentStatusDue
	}
	return PaymentStatusPartial
}

func (s PaymentStatus) String() string {
	names := [...]string{"due", "partial", "paid"}
	if int(s) < 0 || int(s) >= len(names) {
		return "due"
	}
	return names[s]
}

func (s PaymentStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = PaymentStatus(i)
		return nil
	}
	switch str {
	case "due":
		*s = PaymentStatusDue
	case "partial":
		*s = PaymentStatusPartial
	case "paid":
		*s = PaymentStatusPaid
	}
	return nil
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	if value == nil {
		*s = PaymentStatusDue
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = PaymentStatus(v)
	case int:
		*s = PaymentStatus(v)
	}
	return nil
}

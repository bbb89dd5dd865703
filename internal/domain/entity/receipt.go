package entity

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	GSTIN     string `json:"gstin,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit,omitempty"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Receipt is a value object representing a printable bill.
// It is NOT a database entity; it is composed from sale data at print time.
type Receipt struct {
	Header      ReceiptHeader `json:"header"`
	BillNo      string        `json:"bill_no"`
	Date        string        `json:"date"`
	Cashier     string        `json:"cashier,omitempty"`
	Customer    string        `json:"customer,omitempty"`
	PaymentType string        `json:"payment_type,omitempty"`
	Items       []ReceiptItem `json:"items"`
	SubTotal    float64       `json:"sub_total"`
	Discount    float64       `json:"discount,omitempty"`
	CGST        float64       `json:"cgst,omitempty"`
	SGST        float64       `json:"sgst,omitempty"`
	IGST        float64       `json:"igst,omitempty"`
	Total       float64       `json:"total"`
	Paid        float64       `json:"paid"`
	Due         float64       `json:"due"`
	Footer      string        `json:"footer,omitempty"`
}

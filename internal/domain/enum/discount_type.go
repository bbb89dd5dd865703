package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DiscountType represents how a discount value is interpreted
type DiscountType int

const (
	DiscountTypeNone       DiscountType = 0
	DiscountTypePercentage DiscountType = 1
	DiscountTypeFixed      DiscountType = 2
)

// ParseDiscountType maps the request-level discount type strings.
// Unknown values fall back to None so a zero discount stays a no-op.
func ParseDiscountType(s string) DiscountType {
	switch s {
	case "percentage":
		return DiscountTypePercentage
	case "fixed":
		return DiscountTypeFixed
	}
	return DiscountTypeNone
}

func (t DiscountType) String() string {
	names := [...]string{"none", "percentage", "fixed"}
	if int(t) < 0 || int(t) >= len(names) {
		return "none"
	}
	return names[t]
}

func (t DiscountType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *DiscountType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = DiscountType(i)
		return nil
	}
	*t = ParseDiscountType(str)
	return nil
}

func (t DiscountType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *DiscountType) Scan(value interface{}) error {
	if value == nil {
		*t = DiscountTypeNone
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = DiscountType(v)
	case int:
		*t = DiscountType(v)
	}
	return nil
}

package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CustomerType distinguishes walk-in individuals from GST-registered businesses
type CustomerType int

const (
	CustomerTypeIndividual CustomerType = 0
	CustomerTypeBusiness   CustomerType = 1
)

// ParseCustomerType maps request strings to a CustomerType.
func ParseCustomerType(s string) CustomerType {
	if s == "business" {
		return CustomerTypeBusiness
	}
	return CustomerTypeIndividual
}

func (t CustomerType) String() string {
	if t == CustomerTypeBusiness {
		return "business"
	}
	return "individual"
}

func (t CustomerType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *CustomerType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = CustomerType(i)
		return nil
	}
	*t = ParseCustomerType(str)
	return nil
}

func (t CustomerType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *CustomerType) Scan(value interface{}) error {
	if value == nil {
		*t = CustomerTypeIndividual
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = CustomerType(v)
	case int:
		*t = CustomerType(v)
	}
	return nil
}

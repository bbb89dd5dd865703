package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// StockEntryType represents the direction and purpose of a stock movement
type StockEntryType int

const (
	// StockEntryProduction adds freshly baked stock
	StockEntryProduction StockEntryType = 0
	// StockEntryWriteoff removes damaged or expired stock
	StockEntryWriteoff StockEntryType = 1
	// StockEntryAdjustment corrects the count after a physical recount
	StockEntryAdjustment StockEntryType = 2
)

// ParseStockEntryType parses a string into a StockEntryType, defaulting
// to production for unknown values
func ParseStockEntryType(s string) StockEntryType {
	switch s {
	case "writeoff":
		return StockEntryWriteoff
	case "adjustment":
		return StockEntryAdjustment
	default:
		return StockEntryProduction
	}
}

func (t StockEntryType) String() string {
	names := [...]string{"production", "writeoff", "adjustment"}
	if int(t) < 0 || int(t) >= len(names) {
		return "production"
	}
	return names[t]
}

func (t StockEntryType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *StockEntryType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*t = StockEntryType(i)
		return nil
	}
	switch str {
	case "production":
		*t = StockEntryProduction
	case "writeoff":
		*t = StockEntryWriteoff
	case "adjustment":
		*t = StockEntryAdjustment
	}
	return nil
}

func (t StockEntryType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *StockEntryType) Scan(value interface{}) error {
	if value == nil {
		*t = StockEntryProduction
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = StockEntryType(v)
	case int:
		*t = StockEntryType(v)
	}
	return nil
}

package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// BookingStatus represents the state of an advance order
type BookingStatus int

const (
	BookingStatusOpen      BookingStatus = 0
	BookingStatusConfirmed BookingStatus = 1
	BookingStatusFulfilled BookingStatus = 2
	BookingStatusCancelled BookingStatus = 3
)

func (s BookingStatus) String() string {
	names := [...]string{"open", "confirmed", "fulfilled", "cancelled"}
	if int(s) < 0 || int(s) >= len(names) {
		return "open"
	}
	return names[s]
}

func (s BookingStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *BookingStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = BookingStatus(i)
		return nil
	}
	switch str {
	case "open":
		*s = BookingStatusOpen
	case "confirmed":
		*s = BookingStatusConfirmed
	case "fulfilled":
		*s = BookingStatusFulfilled
	case "cancelled":
		*s = BookingStatusCancelled
	}
	return nil
}

func (s BookingStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *BookingStatus) Scan(value interface{}) error {
	if value == nil {
		*s = BookingStatusOpen
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = BookingStatus(v)
	case int:
		*s = BookingStatus(v)
	}
	return nil
}

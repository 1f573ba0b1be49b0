package market

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Status is the lifecycle state of a tracked instrument.
type Status int

const (
	StatusOpen   Status = 1
	StatusClosed Status = 2
)

func (s Status) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open", "1":
		return StatusOpen, nil
	case "closed", "2":
		return StatusClosed, nil
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return int64(s), nil
}

func (s *Status) Scan(src any) error {
	n, err := scanCode(src)
	if err != nil {
		return fmt.Errorf("scan status: %w", err)
	}
	v := Status(n)
	if !v.Valid() {
		return fmt.Errorf("scan status: unknown code %d", n)
	}
	*s = v
	return nil
}

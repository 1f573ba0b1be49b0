// market/segment.go
package market

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Segment is the exchange listing category of a stock. It selects the
// default fee schedule applied to the instrument's trades.
type Segment int

const (
	Shanghai Segment = 1 // main board, Shanghai
	Shenzhen Segment = 2 // main board, Shenzhen
	ChiNext  Segment = 3
	STAR     Segment = 4
)

type SegmentMeta struct {
	Name string
	Code string
	// DailyLimitPct is the exchange's daily price limit in percent.
	DailyLimitPct float64
}

var Segments = map[Segment]SegmentMeta{
	Shanghai: {Name: "shanghai", Code: "SH", DailyLimitPct: 10},
	Shenzhen: {Name: "shenzhen", Code: "SZ", DailyLimitPct: 10},
	ChiNext:  {Name: "chinext", Code: "CYB", DailyLimitPct: 20},
	STAR:     {Name: "star", Code: "KCB", DailyLimitPct: 20},
}

// AllSegments returns every segment in code order.
func AllSegments() []Segment {
	return []Segment{Shanghai, Shenzhen, ChiNext, STAR}
}

func (s Segment) Valid() bool {
	_, ok := Segments[s]
	return ok
}

func (s Segment) String() string {
	if m, ok := Segments[s]; ok {
		return m.Name
	}
	return "segment(" + strconv.Itoa(int(s)) + ")"
}

// ParseSegment accepts a segment name ("shanghai"), exchange code ("SH")
// or numeric code ("1"). Unknown values are an error.
func ParseSegment(s string) (Segment, error) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		seg := Segment(n)
		if !seg.Valid() {
			return 0, fmt.Errorf("unknown segment code %d", n)
		}
		return seg, nil
	}
	for seg, m := range Segments {
		if strings.EqualFold(v, m.Name) || strings.EqualFold(v, m.Code) {
			return seg, nil
		}
	}
	return 0, fmt.Errorf("unknown segment %q", s)
}

func (s Segment) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid segment %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Segment) UnmarshalText(b []byte) error {
	seg, err := ParseSegment(string(b))
	if err != nil {
		return err
	}
	*s = seg
	return nil
}

func (s Segment) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid segment %d", int(s))
	}
	return int64(s), nil
}

func (s *Segment) Scan(src any) error {
	n, err := scanCode(src)
	if err != nil {
		return fmt.Errorf("scan segment: %w", err)
	}
	seg := Segment(n)
	if !seg.Valid() {
		return fmt.Errorf("scan segment: unknown code %d", n)
	}
	*s = seg
	return nil
}

func scanCode(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", src)
	}
}

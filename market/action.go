package market

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// ActionKind is the kind of trade recorded by a ledger entry.
type ActionKind int

const (
	Open   ActionKind = 1
	Close  ActionKind = 2
	Add    ActionKind = 3
	Reduce ActionKind = 4
)

var actionNames = map[ActionKind]string{
	Open:   "open",
	Close:  "close",
	Add:    "add",
	Reduce: "reduce",
}

func (a ActionKind) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

// IsSell reports whether the action disposes of shares. Sell-side actions
// pay stamp tax.
func (a ActionKind) IsSell() bool {
	return a == Close || a == Reduce
}

func (a ActionKind) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "action(" + strconv.Itoa(int(a)) + ")"
}

// ParseActionKind accepts a name ("reduce") or numeric code ("4").
func ParseActionKind(s string) (ActionKind, error) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		a := ActionKind(n)
		if !a.Valid() {
			return 0, fmt.Errorf("unknown action code %d", n)
		}
		return a, nil
	}
	for a, n := range actionNames {
		if strings.EqualFold(v, n) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

func (a ActionKind) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *ActionKind) UnmarshalText(b []byte) error {
	v, err := ParseActionKind(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func (a ActionKind) Value() (driver.Value, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return int64(a), nil
}

func (a *ActionKind) Scan(src any) error {
	n, err := scanCode(src)
	if err != nil {
		return fmt.Errorf("scan action: %w", err)
	}
	v := ActionKind(n)
	if !v.Valid() {
		return fmt.Errorf("scan action: unknown code %d", n)
	}
	*a = v
	return nil
}

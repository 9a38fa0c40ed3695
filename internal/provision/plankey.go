package provision

import (
	"strconv"
	"strings"
)

// PlanKey identifies a vendor plan either by numeric id or by exact trimmed
// name. The form is decided once at parse time so lookups dispatch on a
// tag instead of inspecting the input repeatedly.
type PlanKey struct {
	id      int64
	name    string
	numeric bool
}

// ParsePlanKey trims the input and treats it as a numeric id when it parses
// as an integer, otherwise as a plan name.
func ParsePlanKey(s string) PlanKey {
	s = strings.TrimSpace(s)
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return PlanKey{id: id, numeric: true}
	}
	return PlanKey{name: s}
}

// Matches compares the key against a plan's id and name using the strategy
// fixed at parse time.
func (k PlanKey) Matches(id int64, name string) bool {
	if k.numeric {
		return id == k.id
	}
	return strings.TrimSpace(name) == k.name
}

// IsZero reports whether the key holds neither an id nor a name.
func (k PlanKey) IsZero() bool {
	return !k.numeric && k.name == ""
}

func (k PlanKey) String() string {
	if k.numeric {
		return strconv.FormatInt(k.id, 10)
	}
	return k.name
}

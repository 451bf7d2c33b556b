package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EntityID identifies an event, task, or user. The backend sends identifiers
// either as JSON strings or as numbers; both are canonicalized to their
// string form at construction so equality never depends on representation.
type EntityID string

// NewEntityID canonicalizes a string or numeric identifier.
func NewEntityID(v any) EntityID {
	switch x := v.(type) {
	case nil:
		return ""
	case EntityID:
		return x
	case string:
		return EntityID(strings.TrimSpace(x))
	case int:
		return EntityID(strconv.Itoa(x))
	case int32:
		return EntityID(strconv.FormatInt(int64(x), 10))
	case int64:
		return EntityID(strconv.FormatInt(x, 10))
	case uint64:
		return EntityID(strconv.FormatUint(x, 10))
	case float64:
		return EntityID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return canonicalNumber(x.String())
	case fmt.Stringer:
		return EntityID(x.String())
	default:
		return EntityID(fmt.Sprint(x))
	}
}

// canonicalNumber renders 5, 5.0 and 5e0 identically.
func canonicalNumber(raw string) EntityID {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return EntityID(strconv.FormatInt(i, 10))
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return EntityID(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return EntityID(raw)
}

// String returns the canonical string form.
func (id EntityID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is absent.
func (id EntityID) IsZero() bool {
	return id == ""
}

// Equal reports whether both identifiers name the same entity.
func (id EntityID) Equal(other EntityID) bool {
	return id == other
}

// UnmarshalJSON accepts a JSON string, number, or null.
func (id *EntityID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("entity id: %w", err)
		}
		*id = NewEntityID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entity id: cannot decode %s", string(data))
	}
	*id = canonicalNumber(n.String())
	return nil
}

// MarshalJSON writes the identifier as a string, or null when absent.
func (id EntityID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(id))
}

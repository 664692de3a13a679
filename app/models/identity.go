package models

import (
	"encoding/json"
	"strings"
)

// Identity is the opaque principal resolved from a signed credential.
// The zero value means "no identity".
type Identity struct {
	id string
}

// NewIdentity wraps a raw user id. Surrounding whitespace is dropped.
func NewIdentity(id string) Identity {
	return Identity{id: strings.TrimSpace(id)}
}

// String returns the raw id, for storage adapters and logs.
func (i Identity) String() string {
	return i.id
}

// IsZero reports whether i carries no id.
func (i Identity) IsZero() bool {
	return i.id == ""
}

// Equal reports whether both identities name the same principal.
// Two zero identities are never equal.
func (i Identity) Equal(other Identity) bool {
	return !i.IsZero() && i.id == other.id
}

func (i Identity) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.id)
}

func (i *Identity) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Identity{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = NewIdentity(raw)
	return nil
}

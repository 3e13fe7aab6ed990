package entity

import (
	"encoding/json"
	"fmt"
)

// JSONCodec converts between the plain Entity value and its stored
// representation. It is a standalone adapter rather than a method set on
// Entity so that alternative wire formats can be swapped in without touching
// the value type.
//
// The codec must round-trip exactly: Decode(Encode(e)) == e for every valid e.
type JSONCodec struct{}

// Encode serializes an Entity into its cacheable record form.
func (JSONCodec) Encode(e Entity) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity %d: %w", e.ID, err)
	}
	return data, nil
}

// Decode reconstructs an Entity from a stored record.
func (JSONCodec) Decode(data []byte) (Entity, error) {
	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return Entity{}, fmt.Errorf("failed to unmarshal entity record: %w", err)
	}
	return e, nil
}

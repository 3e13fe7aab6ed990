package entity

import "fmt"

// ID uniquely identifies an Entity. Zero and negative values are never valid.
type ID int64

// Validate reports whether the ID is a well-formed entity key.
func (id ID) Validate() error {
	if id <= 0 {
		return fmt.Errorf("entity id must be positive, got %d", id)
	}
	return nil
}

// Entity is the core business value returned by the repository, independent
// of any storage or transport representation. Equality is structural: two
// entities with the same fields are the same entity. Values are copied
// between layers, never shared.
type Entity struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

package address

import (
	"errors"
	"strings"
)

var (
	ErrNotFound       = errors.New("address not found")
	ErrInvalidAddress = errors.New("label and address are required")
)

// Address is a delivery location owned by one customer.
type Address struct {
	ID        int    `json:"id"`
	UserID    int    `json:"userId"`
	Label     string `json:"label"`
	Address   string `json:"address"`
	City      string `json:"city"`
	IsDefault bool   `json:"isDefault"`
}

func (a Address) Validate() error {
	if strings.TrimSpace(a.Label) == "" || strings.TrimSpace(a.Address) == "" {
		return ErrInvalidAddress
	}
	return nil
}

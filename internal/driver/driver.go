package driver

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("driver not found")
	ErrInvalidDriver = errors.New("invalid driver")
)

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Driver struct {
	ID                  int      `json:"id"`
	Name                string   `json:"name"`
	LicensePlate        string   `json:"licensePlate"`
	Photo               string   `json:"photo,omitempty"`
	Rating              float64  `json:"rating"`
	CompletedDeliveries int      `json:"completedDeliveries"`
	Location            Location `json:"location"`
}

func (d Driver) Validate() error {
	switch {
	case d.ID <= 0:
		return fmt.Errorf("%w: id must be positive", ErrInvalidDriver)
	case d.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDriver)
	case d.Rating < 0 || d.Rating > 5:
		return fmt.Errorf("%w: rating must be in [0, 5]", ErrInvalidDriver)
	case d.CompletedDeliveries < 0:
		return fmt.Errorf("%w: completedDeliveries must not be negative", ErrInvalidDriver)
	}
	return nil
}

package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Livestock is a group of identical animals or plants in one tank, counted
// rather than tracked individually. Moving part of a group to another tank
// splits the record.
type Livestock struct {
	ID             int64
	TankID         int64
	Name           string
	ScientificName string
	Quantity       int
	IntroducedOn   time.Time
	Notes          string
	CreatedAt      time.Time
}

func (l Livestock) Validate() error {
	if l.TankID <= 0 {
		return errors.New("model: livestock tank_id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: livestock name is required")
	}
	if l.Quantity <= 0 {
		return fmt.Errorf("model: livestock quantity must be positive, got %d", l.Quantity)
	}
	if l.CreatedAt.IsZero() {
		return errors.New("model: livestock created_at is required")
	}
	return nil
}

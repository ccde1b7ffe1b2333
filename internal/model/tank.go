package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidWaterType = errors.New("model: invalid water type")

type WaterType string

const (
	WaterFreshwater WaterType = "Freshwater"
	WaterSaltwater  WaterType = "Saltwater"
	WaterBrackish   WaterType = "Brackish"
)

func (w WaterType) IsValid() bool {
	switch w {
	case WaterFreshwater, WaterSaltwater, WaterBrackish:
		return true
	default:
		return false
	}
}

type Tank struct {
	ID          int64
	Name        string
	VolumeLiter float64
	WaterType   WaterType
	SetupDate   time.Time
	CreatedAt   time.Time
}

func (t Tank) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("model: tank name is required")
	}
	if t.VolumeLiter <= 0 {
		return fmt.Errorf("model: tank volume must be positive, got %g", t.VolumeLiter)
	}
	if !t.WaterType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidWaterType, t.WaterType)
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: tank created_at is required")
	}
	return nil
}

// ParameterRange is a per-tank acceptable band for one water parameter,
// e.g. pH 6.5-7.5 or nitrate 0-20 mg/l.
type ParameterRange struct {
	ID     int64
	TankID int64
	Name   string
	Min    float64
	Max    float64
	Unit   string
}

func (p ParameterRange) Validate() error {
	if p.TankID <= 0 {
		return errors.New("model: parameter tank_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("model: parameter name is required")
	}
	if p.Max < p.Min {
		return fmt.Errorf("model: parameter range inverted: min %g > max %g", p.Min, p.Max)
	}
	return nil
}

// InRange reports whether a measured value falls inside the band.
func (p ParameterRange) InRange(value float64) bool {
	return value >= p.Min && value <= p.Max
}

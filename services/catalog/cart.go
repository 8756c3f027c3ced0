package catalog

import (
	"errors"
	"fmt"

	"toltimed/models"
)

var (
	ErrMissingPrice     = errors.New("service has no price")
	ErrNotInCart        = errors.New("service is not in the cart")
	ErrUnknownDimension = errors.New("unknown cart dimension")
)

// Dimension names a per-line multiplier.
type Dimension string

const (
	DimensionQuantity Dimension = "quantity"
	DimensionDays     Dimension = "days"
)

// Cart holds the selected services. A service ID appears at most once.
type Cart struct {
	lines []models.SelectedService
}

// NewCart rebuilds a cart from stored lines, dropping duplicates and recomputing totals.
func NewCart(lines []models.SelectedService) *Cart {
	c := &Cart{}
	for _, l := range lines {
		if c.index(l.Service.ID) >= 0 {
			continue
		}
		l.Recompute()
		c.lines = append(c.lines, l)
	}
	return c
}

func (c *Cart) index(serviceID string) int {
	for i, l := range c.lines {
		if l.Service.ID == serviceID {
			return i
		}
	}
	return -1
}

// ToggleSelect removes the service if present, otherwise adds it at quantity=1, days=1.
// It reports whether the service is selected afterwards.
func (c *Cart) ToggleSelect(s models.Service) (bool, error) {
	if i := c.index(s.ID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return false, nil
	}
	if !s.HasPrice() {
		return false, fmt.Errorf("select %q: %w", s.ID, ErrMissingPrice)
	}
	c.lines = append(c.lines, models.NewSelectedService(s))
	return true, nil
}

// AdjustQuantity adds increment to the given dimension, never going below 1.
func (c *Cart) AdjustQuantity(serviceID string, dim Dimension, increment int) error {
	i := c.index(serviceID)
	if i < 0 {
		return fmt.Errorf("adjust %q: %w", serviceID, ErrNotInCart)
	}
	line := &c.lines[i]
	switch dim {
	case DimensionQuantity:
		line.Quantity = clampMin1(line.Quantity + increment)
	case DimensionDays:
		line.Days = clampMin1(line.Days + increment)
	default:
		return fmt.Errorf("adjust %q by %q: %w", serviceID, dim, ErrUnknownDimension)
	}
	line.Recompute()
	return nil
}

// Total sums the line totals.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.TotalAmount
	}
	return total
}

// SessionTotal is the price of one visit across the cart: unit price times
// quantity, without the per-line days. Schedule costing multiplies this by
// the number of billable sessions.
func (c *Cart) SessionTotal() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Service.UnitPrice() * float64(l.Quantity)
	}
	return total
}

// Contains reports whether serviceID is selected.
func (c *Cart) Contains(serviceID string) bool {
	return c.index(serviceID) >= 0
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	return len(c.lines)
}

// Lines returns a copy of the cart lines in selection order.
func (c *Cart) Lines() []models.SelectedService {
	return append([]models.SelectedService(nil), c.lines...)
}

func clampMin1(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

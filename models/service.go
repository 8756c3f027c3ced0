package models

// ServiceCategory groups catalogue entries into departments.
type ServiceCategory string

const (
	CategoryNursing   ServiceCategory = "nursing"
	CategoryCaregiver ServiceCategory = "caregiver"
	CategoryInPatient ServiceCategory = "in-patient"
)

// ServiceCategories lists every category in display order.
var ServiceCategories = []ServiceCategory{CategoryNursing, CategoryCaregiver, CategoryInPatient}

// Valid reports whether c belongs to the closed category set.
func (c ServiceCategory) Valid() bool {
	switch c {
	case CategoryNursing, CategoryCaregiver, CategoryInPatient:
		return true
	}
	return false
}

// Service is an offered procedure or care package. Loaded once and never mutated.
type Service struct {
	ID               string          `bson:"id" json:"id"`
	Name             string          `bson:"name" json:"name"`
	Description      string          `bson:"description" json:"description"`
	ShortDescription string          `bson:"shortDescription,omitempty" json:"shortDescription,omitempty"`
	Price            *float64        `bson:"price,omitempty" json:"price,omitempty"` // nil when the source omitted a price
	Duration         string          `bson:"duration" json:"duration"`               // display only, e.g. "2 hours"
	Category         ServiceCategory `bson:"category" json:"category"`
}

// HasPrice reports whether the source supplied a price.
func (s Service) HasPrice() bool {
	return s.Price != nil
}

// UnitPrice returns the price, or 0 when absent.
func (s Service) UnitPrice() float64 {
	if s.Price == nil {
		return 0
	}
	return *s.Price
}

// SelectedService is a cart line.
type SelectedService struct {
	Service     Service `bson:"service" json:"service"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Days        int     `bson:"days" json:"days"`
	TotalAmount float64 `bson:"totalAmount" json:"totalAmount"` // cached price * quantity * days
}

// NewSelectedService wraps s at quantity=1, days=1.
func NewSelectedService(s Service) SelectedService {
	line := SelectedService{Service: s, Quantity: 1, Days: 1}
	line.Recompute()
	return line
}

// Recompute clamps the multipliers to 1 and refreshes TotalAmount.
func (l *SelectedService) Recompute() {
	if l.Quantity < 1 {
		l.Quantity = 1
	}
	if l.Days < 1 {
		l.Days = 1
	}
	l.TotalAmount = l.Service.UnitPrice() * float64(l.Quantity) * float64(l.Days)
}

// PriceOf is a helper for building catalogue fixtures.
func PriceOf(v float64) *float64 {
	return &v
}

package catalog

import (
	"strings"

	"toltimed/models"
)

// Filter returns the services whose name or short description contains query,
// case-insensitively. Order is preserved; an empty query returns everything.
func Filter(services []models.Service, query string) []models.Service {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Service, 0, len(services))
	for _, s := range services {
		if q == "" || matches(s, q) {
			out = append(out, s)
		}
	}
	return out
}

func matches(s models.Service, q string) bool {
	if strings.Contains(strings.ToLower(s.Name), q) {
		return true
	}
	desc := s.ShortDescription
	if desc == "" {
		desc = s.Description
	}
	return strings.Contains(strings.ToLower(desc), q)
}

// Department is one category section of the catalogue.
type Department struct {
	Category models.ServiceCategory `json:"category"`
	Services []models.Service       `json:"services"`
}

// GroupByCategory splits services into departments in models.ServiceCategories order.
// Services with an unknown category are left out.
func GroupByCategory(services []models.Service) []Department {
	var out []Department
	for _, cat := range models.ServiceCategories {
		var members []models.Service
		for _, s := range services {
			if s.Category == cat {
				members = append(members, s)
			}
		}
		if len(members) > 0 {
			out = append(out, Department{Category: cat, Services: members})
		}
	}
	return out
}

// Find looks a service up by ID.
func Find(services []models.Service, id string) (models.Service, bool) {
	for _, s := range services {
		if s.ID == id {
			return s, true
		}
	}
	return models.Service{}, false
}

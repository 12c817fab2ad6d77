// Package catalog holds the salon's fixed service menu.
package catalog

import (
	"fmt"
	"strings"
)

// Service is one bookable salon service.
type Service struct {
	Name  string
	Price float64
	Emoji string
}

// Label renders the service the way it is shown on buttons and echoes.
func (s Service) Label() string {
	return fmt.Sprintf("%s %s - R%.0f", s.Emoji, s.Name, s.Price)
}

var services = []Service{
	{Name: "Basic Cut", Price: 150, Emoji: "✂️"},
	{Name: "Fade Cut", Price: 200, Emoji: "🔥"},
	{Name: "Beard Trim", Price: 80, Emoji: "🧔"},
	{Name: "Full Service", Price: 280, Emoji: "⭐"},
	{Name: "Kids Cut", Price: 120, Emoji: "👶"},
	{Name: "Wash & Cut", Price: 180, Emoji: "🧴"},
}

// Services returns a copy of the service menu in display order.
func Services() []Service {
	return append([]Service(nil), services...)
}

// Find looks a service up by name, ignoring case and surrounding spaces.
func Find(name string) (Service, bool) {
	name = strings.TrimSpace(name)
	for _, svc := range services {
		if strings.EqualFold(svc.Name, name) {
			return svc, true
		}
	}
	return Service{}, false
}

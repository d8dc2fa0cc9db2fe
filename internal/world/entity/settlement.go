package entity

import "math"

type SettlementID = int

// Settlement is a capturable region. Values handed out by the store are
// copies; only the store mutates the live instance.
type Settlement struct {
	ID                 SettlementID   `json:"id"`
	Name               string         `json:"name"`
	Latitude           float64        `json:"latitude"`
	Longitude          float64        `json:"longitude"`
	Population         float64        `json:"population"`
	MaxPopulation      float64        `json:"maxPopulation"`
	Owner              Owner          `json:"owner"`
	Buildings          []string       `json:"buildings"`
	AvailableBuildings []string       `json:"availableBuildings"`
	BuildingLimits     map[string]int `json:"buildingLimits"`
	Military           float64        `json:"military"`
	Satisfaction       float64        `json:"satisfaction"`
	TaxRate            int            `json:"taxRate"`
	ProtestTimer       *int           `json:"protestTimer,omitempty"`
	Resources          Resources      `json:"resources"`
	Boundaries         [][2]float64   `json:"boundaries"`
}

const (
	MinTaxRate     = 0
	MaxTaxRate     = 10
	DefaultTaxRate = 5
)

func (s *Settlement) Clone() Settlement {
	out := *s
	out.Buildings = append([]string(nil), s.Buildings...)
	out.AvailableBuildings = append([]string(nil), s.AvailableBuildings...)
	if s.BuildingLimits != nil {
		out.BuildingLimits = make(map[string]int, len(s.BuildingLimits))
		for k, v := range s.BuildingLimits {
			out.BuildingLimits[k] = v
		}
	}
	if s.ProtestTimer != nil {
		t := *s.ProtestTimer
		out.ProtestTimer = &t
	}
	out.Boundaries = append([][2]float64(nil), s.Boundaries...)
	return out
}

func (s *Settlement) CountBuilding(id string) int {
	n := 0
	for _, b := range s.Buildings {
		if b == id {
			n++
		}
	}
	return n
}

func (s *Settlement) BuildingCounts() map[string]int {
	out := make(map[string]int, len(s.Buildings))
	for _, b := range s.Buildings {
		out[b]++
	}
	return out
}

func (s *Settlement) IsAvailable(id string) bool {
	for _, b := range s.AvailableBuildings {
		if b == id {
			return true
		}
	}
	return false
}

// Clamp restores the numeric invariants in place.
func (s *Settlement) Clamp() {
	if s.MaxPopulation < 0 {
		s.MaxPopulation = 0
	}
	s.Population = clamp(s.Population, 0, s.MaxPopulation)
	s.Satisfaction = clamp(s.Satisfaction, 0, 100)
	if s.TaxRate < MinTaxRate {
		s.TaxRate = MinTaxRate
	}
	if s.TaxRate > MaxTaxRate {
		s.TaxRate = MaxTaxRate
	}
	if s.Military < 0 || math.IsNaN(s.Military) {
		s.Military = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

package entity

// Patch is a partial settlement update; nil fields are left untouched.
type Patch struct {
	Name               *string
	Population         *float64
	MaxPopulation      *float64
	Owner              *Owner
	Buildings          *[]string
	AvailableBuildings *[]string
	BuildingLimits     map[string]int
	Military           *float64
	Satisfaction       *float64
	TaxRate            *int
	ProtestTimer       *int
	ClearProtestTimer  bool
	Resources          *Resources
	Boundaries         *[][2]float64
}

func Ptr[T any](v T) *T {
	return &v
}

// Apply merges p into s. Limits and clamping are the store's concern.
func (p Patch) Apply(s *Settlement) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.MaxPopulation != nil {
		s.MaxPopulation = *p.MaxPopulation
	}
	if p.Population != nil {
		s.Population = *p.Population
	}
	if p.Owner != nil {
		s.Owner = *p.Owner
	}
	if p.Buildings != nil {
		s.Buildings = append([]string(nil), (*p.Buildings)...)
	}
	if p.AvailableBuildings != nil {
		s.AvailableBuildings = append([]string(nil), (*p.AvailableBuildings)...)
	}
	if p.BuildingLimits != nil {
		s.BuildingLimits = make(map[string]int, len(p.BuildingLimits))
		for k, v := range p.BuildingLimits {
			s.BuildingLimits[k] = v
		}
	}
	if p.Military != nil {
		s.Military = *p.Military
	}
	if p.Satisfaction != nil {
		s.Satisfaction = *p.Satisfaction
	}
	if p.TaxRate != nil {
		s.TaxRate = *p.TaxRate
	}
	if p.ClearProtestTimer {
		s.ProtestTimer = nil
	}
	if p.ProtestTimer != nil {
		t := *p.ProtestTimer
		s.ProtestTimer = &t
	}
	if p.Resources != nil {
		s.Resources = *p.Resources
	}
	if p.Boundaries != nil {
		s.Boundaries = append([][2]float64(nil), (*p.Boundaries)...)
	}
}

package region

import (
	"fmt"
	"os"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"

	"gopkg.in/yaml.v3"
)

// Seed describes one settlement created at world initialisation.
type Seed struct {
	ID            int
	Name          string
	Latitude      float64
	Longitude     float64
	MaxPopulation float64
	Resources     resource.Resources
}

func seed(id int, name string, lat, lng, maxPop float64, base map[resource.Resource]float64) Seed {
	s := Seed{ID: id, Name: name, Latitude: lat, Longitude: lng, MaxPopulation: maxPop}
	for r, v := range base {
		s.Resources[r] = v
	}
	return s
}

func Default() []Seed {
	return []Seed{
		seed(1, "Московская область", 55.7558, 37.6173, 10000, map[resource.Resource]float64{
			resource.Food: 10, resource.Gold: 8, resource.Wood: 5, resource.Oil: 2,
		}),
		seed(2, "Ленинградская область", 59.9343, 30.3351, 10000, map[resource.Resource]float64{
			resource.Food: 8, resource.Oil: 5, resource.Wood: 7, resource.Gold: 3,
		}),
		seed(3, "Новосибирская область", 55.0084, 82.9357, 5000, map[resource.Resource]float64{
			resource.Gold: 7, resource.Wood: 5, resource.Food: 3, resource.Metal: 4,
		}),
		seed(4, "Свердловская область", 56.8389, 60.6057, 6000, map[resource.Resource]float64{
			resource.Metal: 12, resource.Wood: 6, resource.Gold: 4, resource.Food: 2,
		}),
		seed(5, "Нижегородская область", 56.2965, 43.9361, 5000, map[resource.Resource]float64{
			resource.Wood: 8, resource.Food: 5, resource.Gold: 3, resource.Oil: 2,
		}),
	}
}

type fileSeed struct {
	ID            int                `yaml:"id"`
	Name          string             `yaml:"name"`
	Latitude      float64            `yaml:"latitude"`
	Longitude     float64            `yaml:"longitude"`
	MaxPopulation float64            `yaml:"max_population"`
	Resources     map[string]float64 `yaml:"resources"`
}

type fileRegions struct {
	Regions []fileSeed `yaml:"regions"`
}

// Load reads seed regions from YAML. An empty path yields Default().
func Load(path string) ([]Seed, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) ([]Seed, error) {
	var f fileRegions
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse regions: %w", err)
	}
	if len(f.Regions) == 0 {
		return nil, fmt.Errorf("regions file has no regions")
	}
	seen := make(map[int]struct{}, len(f.Regions))
	out := make([]Seed, 0, len(f.Regions))
	for _, fs := range f.Regions {
		if fs.ID <= 0 {
			return nil, fmt.Errorf("region %q: id must be positive", fs.Name)
		}
		if _, dup := seen[fs.ID]; dup {
			return nil, fmt.Errorf("duplicate region id %d", fs.ID)
		}
		seen[fs.ID] = struct{}{}
		if fs.MaxPopulation < 0 {
			return nil, fmt.Errorf("region %d: negative max_population", fs.ID)
		}
		res, err := resource.FromMap(fs.Resources)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", fs.ID, err)
		}
		out = append(out, Seed{
			ID:            fs.ID,
			Name:          fs.Name,
			Latitude:      fs.Latitude,
			Longitude:     fs.Longitude,
			MaxPopulation: fs.MaxPopulation,
			Resources:     res,
		})
	}
	return out, nil
}

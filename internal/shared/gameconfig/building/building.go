package building

import (
	"fmt"
	"os"
	"sort"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"

	"gopkg.in/yaml.v3"
)

// DefaultLimit applies to ids that neither the settlement nor the catalog limit.
const DefaultLimit = 999

type Production struct {
	Resource resource.Resource `json:"type"`
	Amount   float64           `json:"amount"`
	// ScalesWithPopulation multiplies Amount by max(population,1)/100.
	ScalesWithPopulation bool `json:"scalesWithPopulation,omitempty"`
}

// Consumption is the input side of a conversion building.
type Consumption struct {
	Resource resource.Resource `json:"type"`
	Amount   float64           `json:"amount"`
}

type Population struct {
	Housing int     `json:"housing"`
	Growth  float64 `json:"growth"`
}

type Military struct {
	Production    int `json:"production"`
	PopulationUse int `json:"populationUse"`
}

type Definition struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Cost              resource.Resources `json:"cost"`
	Production        *Production        `json:"resourceProduction,omitempty"`
	Consumption       *Consumption       `json:"resourceConsumption,omitempty"`
	Population        *Population        `json:"population,omitempty"`
	Military          *Military          `json:"military,omitempty"`
	SatisfactionBonus float64            `json:"satisfactionBonus,omitempty"`
	Workers           int                `json:"workers"`
	MaxCount          int                `json:"maxCount"`
}

// Yield is the per-tick output of one instance at the given population.
func (d Definition) Yield(population float64) float64 {
	if d.Production == nil {
		return 0
	}
	if d.Production.ScalesWithPopulation {
		return d.Production.Amount * max(population, 1) / 100
	}
	return d.Production.Amount
}

func (d Definition) Growth() float64 {
	if d.Population == nil {
		return 0
	}
	return d.Population.Growth
}

type Catalog struct {
	defs map[string]Definition
	ids  []string
}

func New(defs []Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("building without id")
		}
		if _, dup := c.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate building id %q", d.ID)
		}
		if d.MaxCount <= 0 {
			d.MaxCount = DefaultLimit
		}
		c.defs[d.ID] = d
		c.ids = append(c.ids, d.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

func (c *Catalog) Get(id string) (Definition, bool) {
	d, ok := c.defs[id]
	return d, ok
}

func (c *Catalog) All() []Definition {
	out := make([]Definition, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.defs[id])
	}
	return out
}

func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

func (c *Catalog) Limits() map[string]int {
	out := make(map[string]int, len(c.defs))
	for id, d := range c.defs {
		out[id] = d.MaxCount
	}
	return out
}

// MaxCount falls back to DefaultLimit for ids outside the catalog.
func (c *Catalog) MaxCount(id string) int {
	if d, ok := c.defs[id]; ok {
		return d.MaxCount
	}
	return DefaultLimit
}

func (c *Catalog) CanAfford(stock resource.Resources, id string) bool {
	d, ok := c.defs[id]
	if !ok {
		return false
	}
	return stock.Covers(d.Cost)
}

// Workers sums the declared worker requirement of every instance.
func (c *Catalog) Workers(buildings []string) int {
	total := 0
	for _, id := range buildings {
		total += c.defs[id].Workers
	}
	return total
}

type fileDef struct {
	ID                string             `yaml:"id"`
	Name              string             `yaml:"name"`
	Cost              map[string]float64 `yaml:"cost"`
	Production        *fileFlow          `yaml:"production"`
	Consumption       *fileFlow          `yaml:"consumption"`
	Population        *Population        `yaml:"population"`
	Military          *fileMilitary      `yaml:"military"`
	SatisfactionBonus float64            `yaml:"satisfaction_bonus"`
	Workers           int                `yaml:"workers"`
	MaxCount          int                `yaml:"max_count"`
}

type fileFlow struct {
	Type                 string  `yaml:"type"`
	Amount               float64 `yaml:"amount"`
	ScalesWithPopulation bool    `yaml:"scales_with_population"`
}

type fileMilitary struct {
	Production    int `yaml:"production"`
	PopulationUse int `yaml:"population_use"`
}

type fileCatalog struct {
	Buildings []fileDef `yaml:"buildings"`
}

// Load reads a YAML catalog. An empty path yields Default().
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read building catalog: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var f fileCatalog
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse building catalog: %w", err)
	}
	defs := make([]Definition, 0, len(f.Buildings))
	for _, fd := range f.Buildings {
		d, err := fd.definition()
		if err != nil {
			return nil, fmt.Errorf("building %q: %w", fd.ID, err)
		}
		defs = append(defs, d)
	}
	return New(defs)
}

func (fd fileDef) definition() (Definition, error) {
	cost, err := resource.FromMap(fd.Cost)
	if err != nil {
		return Definition{}, err
	}
	d := Definition{
		ID:                fd.ID,
		Name:              fd.Name,
		Cost:              cost,
		Population:        fd.Population,
		SatisfactionBonus: fd.SatisfactionBonus,
		Workers:           fd.Workers,
		MaxCount:          fd.MaxCount,
	}
	if fd.Production != nil {
		r, err := resource.Parse(fd.Production.Type)
		if err != nil {
			return Definition{}, err
		}
		d.Production = &Production{Resource: r, Amount: fd.Production.Amount, ScalesWithPopulation: fd.Production.ScalesWithPopulation}
	}
	if fd.Consumption != nil {
		r, err := resource.Parse(fd.Consumption.Type)
		if err != nil {
			return Definition{}, err
		}
		d.Consumption = &Consumption{Resource: r, Amount: fd.Consumption.Amount}
	}
	if fd.Military != nil {
		d.Military = &Military{Production: fd.Military.Production, PopulationUse: fd.Military.PopulationUse}
	}
	return d, nil
}

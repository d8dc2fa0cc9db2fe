package building

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
)

func TestDefault_Table(t *testing.T) {
	c := Default()
	if got := len(c.IDs()); got != 13 {
		t.Fatalf("catalog size=%d", got)
	}

	farm, ok := c.Get("farm")
	if !ok {
		t.Fatalf("farm missing")
	}
	if farm.Workers != 10 || farm.MaxCount != 5 {
		t.Fatalf("farm=%+v", farm)
	}
	if got := farm.Yield(100); got != 5 {
		t.Fatalf("farm yield at pop 100=%v", got)
	}
	if got := farm.Yield(0); got != 0.05 {
		t.Fatalf("farm yield at pop 0=%v", got)
	}

	oil, _ := c.Get("oil_rig")
	if oil.Cost[resource.Metal] != 20 || oil.Cost[resource.Gold] != 100 {
		t.Fatalf("oil_rig cost=%v", oil.Cost)
	}

	steel, _ := c.Get("steel_factory")
	if steel.Consumption == nil || steel.Consumption.Resource != resource.Metal {
		t.Fatalf("steel_factory consumption=%+v", steel.Consumption)
	}
}

func TestCatalog_AllSortedAndLimits(t *testing.T) {
	c := Default()
	all := c.All()
	for i := 1; i < len(all); i++ {
		if all[i-1].ID >= all[i].ID {
			t.Fatalf("not sorted at %d: %s >= %s", i, all[i-1].ID, all[i].ID)
		}
	}
	if c.Limits()["temple"] != 1 {
		t.Fatalf("temple limit=%d", c.Limits()["temple"])
	}
	if c.MaxCount("unknown") != DefaultLimit {
		t.Fatalf("fallback limit=%d", c.MaxCount("unknown"))
	}
}

func TestCatalog_CanAffordAndWorkers(t *testing.T) {
	c := Default()
	var stock resource.Resources
	stock[resource.Wood] = 15
	stock[resource.Gold] = 9
	if c.CanAfford(stock, "farm") {
		t.Fatalf("9 gold should not afford a farm")
	}
	stock[resource.Gold] = 10
	if !c.CanAfford(stock, "farm") {
		t.Fatalf("should afford a farm")
	}
	if c.CanAfford(stock, "castle") {
		t.Fatalf("unknown building is never affordable")
	}
	if got := c.Workers([]string{"farm", "farm", "house", "gold_mine"}); got != 35 {
		t.Fatalf("workers=%d", got)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildings.yml")
	body := `
buildings:
  - id: farm
    name: Farm
    cost: {wood: 1, gold: 2}
    production: {type: food, amount: 4, scales_with_population: true}
    workers: 3
    max_count: 2
  - id: mill
    cost: {wood: 5}
    consumption: {type: food, amount: 1}
    production: {type: gold, amount: 2}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	farm, _ := c.Get("farm")
	if farm.Cost[resource.Gold] != 2 || !farm.Production.ScalesWithPopulation || farm.MaxCount != 2 {
		t.Fatalf("farm=%+v", farm)
	}
	mill, _ := c.Get("mill")
	if mill.MaxCount != DefaultLimit || mill.Consumption.Resource != resource.Food {
		t.Fatalf("mill=%+v", mill)
	}
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown resource": "buildings:\n  - id: a\n    cost: {mana: 1}\n",
		"duplicate id":     "buildings:\n  - id: a\n  - id: a\n",
		"missing id":       "buildings:\n  - name: x\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := c.Get("temple"); !ok {
		t.Fatalf("default catalog expected")
	}
}

func TestLoad_ShippedCatalogMatchesDefault(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "..", "..", "configs", "buildings.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(c.All(), Default().All()) {
		t.Fatalf("configs/buildings.yml drifted from the built-in catalog")
	}
}

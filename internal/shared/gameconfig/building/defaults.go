package building

import "github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"

func cost(wood, gold float64) resource.Resources {
	var rs resource.Resources
	rs[resource.Wood] = wood
	rs[resource.Gold] = gold
	return rs
}

func plus(rs resource.Resources, r resource.Resource, amount float64) resource.Resources {
	rs[r] += amount
	return rs
}

func produce(r resource.Resource, amount float64) *Production {
	return &Production{Resource: r, Amount: amount}
}

var defaultDefs = []Definition{
	{ID: "house", Name: "Жилой дом", Cost: cost(10, 5), Population: &Population{Housing: 10, Growth: 0.1}, MaxCount: 4},
	{ID: "farm", Name: "Ферма", Cost: cost(15, 10), Production: &Production{Resource: resource.Food, Amount: 5, ScalesWithPopulation: true}, Workers: 10, MaxCount: 5},
	{ID: "logging_camp", Name: "Лесопилка", Cost: cost(5, 20), Production: produce(resource.Wood, 3), Workers: 8, MaxCount: 3},
	{ID: "market", Name: "Рынок", Cost: cost(20, 30), SatisfactionBonus: 5, Workers: 5, MaxCount: 2},
	{ID: "gold_mine", Name: "Золотая шахта", Cost: cost(30, 50), Production: produce(resource.Gold, 3), Workers: 15, MaxCount: 3},
	{ID: "oil_rig", Name: "Нефтяная вышка", Cost: plus(cost(40, 100), resource.Metal, 20), Production: produce(resource.Oil, 3), Workers: 12, MaxCount: 3},
	{ID: "barracks", Name: "Казармы", Cost: cost(50, 100), Military: &Military{Production: 1, PopulationUse: 1}, Workers: 10, MaxCount: 3},
	{ID: "metal_factory", Name: "Металлургический завод", Cost: plus(cost(50, 150), resource.Oil, 10), Production: produce(resource.Metal, 2), Workers: 15, MaxCount: 4},
	{ID: "steel_factory", Name: "Сталелитейный завод", Cost: plus(cost(40, 200), resource.Metal, 50), Production: produce(resource.Steel, 1), Consumption: &Consumption{Resource: resource.Metal, Amount: 1}, Workers: 20, MaxCount: 3},
	{ID: "weapons_factory", Name: "Оружейный завод", Cost: plus(cost(30, 300), resource.Steel, 100), Production: produce(resource.Weapons, 1), Consumption: &Consumption{Resource: resource.Steel, Amount: 1}, Workers: 25, MaxCount: 2},
	{ID: "theater", Name: "Театр", Cost: cost(100, 200), Production: produce(resource.Influence, 1), SatisfactionBonus: 10, Workers: 10, MaxCount: 2},
	{ID: "park", Name: "Парк", Cost: cost(50, 100), Production: produce(resource.Influence, 1), SatisfactionBonus: 5, MaxCount: 3},
	{ID: "temple", Name: "Храм", Cost: cost(200, 300), Production: produce(resource.Influence, 1), SatisfactionBonus: 15, Workers: 5, MaxCount: 1},
}

// Default is the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultDefs)
	if err != nil {
		panic(err)
	}
	return c
}

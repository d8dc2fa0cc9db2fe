package resource

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	r, err := Parse(" Steel ")
	if err != nil || r != Steel {
		t.Fatalf("parse steel: %v %v", r, err)
	}
	if _, err := Parse("mana"); err == nil {
		t.Fatalf("expected unknown resource error")
	}
}

func TestTradable(t *testing.T) {
	got := TradableAll()
	want := []Resource{Wood, Food, Oil, Metal, Steel, Weapons}
	if len(got) != len(want) {
		t.Fatalf("tradable=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tradable=%v", got)
		}
	}
}

func TestResourcesJSON_RejectsUnknownKey(t *testing.T) {
	var rs Resources
	if err := json.Unmarshal([]byte(`{"gold":5,"food":1.5}`), &rs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rs[Gold] != 5 || rs[Food] != 1.5 || rs[Oil] != 0 {
		t.Fatalf("got %v", rs)
	}
	if err := json.Unmarshal([]byte(`{"gold":5,"mana":1}`), &rs); err == nil {
		t.Fatalf("expected error for unknown key")
	}

	out, err := json.Marshal(rs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]float64
	_ = json.Unmarshal(out, &m)
	if len(m) != Count {
		t.Fatalf("marshal should carry every key, got %v", m)
	}
}

func TestNormalize(t *testing.T) {
	rs := Resources{}
	rs[Food] = -3
	rs[Gold] = 1.234567
	rs.Normalize()
	if rs[Food] != 0 {
		t.Fatalf("food=%v", rs[Food])
	}
	if rs[Gold] != 1.2346 {
		t.Fatalf("gold=%v", rs[Gold])
	}
}

func TestCoversAndShortfall(t *testing.T) {
	stock := Resources{}
	stock[Wood] = 10
	stock[Gold] = 4
	cost := Resources{}
	cost[Wood] = 10
	cost[Gold] = 5
	if stock.Covers(cost) {
		t.Fatalf("should not cover")
	}
	if r, ok := stock.Shortfall(cost); !ok || r != Gold {
		t.Fatalf("shortfall=%v %v", r, ok)
	}
	stock[Gold] = 5
	if !stock.Covers(cost) {
		t.Fatalf("should cover")
	}
}

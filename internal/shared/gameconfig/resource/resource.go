package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Resource is the closed set of stock kinds held in the aggregate ledger.
type Resource int

const (
	Gold Resource = iota
	Wood
	Food
	Oil
	Metal
	Steel
	Weapons
	Influence

	Count int = iota
)

var names = [Count]string{"gold", "wood", "food", "oil", "metal", "steel", "weapons", "influence"}

func (r Resource) String() string {
	if r < 0 || int(r) >= Count {
		return fmt.Sprintf("resource(%d)", int(r))
	}
	return names[r]
}

func (r Resource) Valid() bool {
	return r >= 0 && int(r) < Count
}

// Tradable reports whether the market keeps an order book for r. Gold is the
// settlement currency and influence cannot change hands.
func (r Resource) Tradable() bool {
	return r.Valid() && r != Gold && r != Influence
}

func Parse(s string) (Resource, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range names {
		if n == key {
			return Resource(i), nil
		}
	}
	return 0, fmt.Errorf("unknown resource %q", s)
}

func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid resource %d", int(r))
	}
	return []byte(names[r]), nil
}

func (r *Resource) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func All() []Resource {
	out := make([]Resource, Count)
	for i := range out {
		out[i] = Resource(i)
	}
	return out
}

func TradableAll() []Resource {
	out := make([]Resource, 0, Count)
	for _, r := range All() {
		if r.Tradable() {
			out = append(out, r)
		}
	}
	return out
}

// Resources is a fixed record indexed by Resource. It is a value type:
// assignment copies.
type Resources [Count]float64

func (rs Resources) Get(r Resource) float64 {
	return rs[r]
}

func (rs *Resources) Set(r Resource, v float64) {
	rs[r] = v
}

func (rs *Resources) Add(r Resource, v float64) {
	rs[r] += v
}

func (rs *Resources) AddAll(o Resources) {
	for i := range rs {
		rs[i] += o[i]
	}
}

func (rs *Resources) SubAll(o Resources) {
	for i := range rs {
		rs[i] -= o[i]
	}
}

// Covers reports whether every amount in cost is available in rs.
func (rs Resources) Covers(cost Resources) bool {
	for i := range rs {
		if cost[i] > 0 && rs[i] < cost[i] {
			return false
		}
	}
	return true
}

// Shortfall returns the first resource rs cannot cover.
func (rs Resources) Shortfall(cost Resources) (Resource, bool) {
	for i := range rs {
		if cost[i] > 0 && rs[i] < cost[i] {
			return Resource(i), true
		}
	}
	return 0, false
}

// Normalize floors every stock at zero and rounds to 4 decimals.
func (rs *Resources) Normalize() {
	for i := range rs {
		rs[i] = Round(math.Max(0, rs[i]), 4)
	}
}

func (rs Resources) IsZero() bool {
	for _, v := range rs {
		if v != 0 {
			return false
		}
	}
	return true
}

// NonZero lists the resources with a non-zero amount, in enum order.
func (rs Resources) NonZero() []Resource {
	out := make([]Resource, 0, Count)
	for i, v := range rs {
		if v != 0 {
			out = append(out, Resource(i))
		}
	}
	return out
}

func (rs Resources) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, Count)
	for i, v := range rs {
		m[names[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON rejects unknown keys; missing keys read as zero.
func (rs *Resources) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out, err := FromMap(m)
	if err != nil {
		return err
	}
	*rs = out
	return nil
}

func FromMap(m map[string]float64) (Resources, error) {
	var out Resources
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r, err := Parse(k)
		if err != nil {
			return Resources{}, err
		}
		out[r] = m[k]
	}
	return out, nil
}

func (rs Resources) ToMap(skipZero bool) map[string]float64 {
	m := make(map[string]float64, Count)
	for i, v := range rs {
		if skipZero && v == 0 {
			continue
		}
		m[names[i]] = v
	}
	return m
}

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

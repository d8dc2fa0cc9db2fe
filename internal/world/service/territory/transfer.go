package territory

import (
	"container/heap"
	"math"
	"time"

	"github.com/Chinaskijl/stttg/internal/world/entity"
)

const earthRadiusKm = 6371.0

type Result string

const (
	Reinforced Result = "reinforced"
	Captured   Result = "captured"
	Failed     Result = "failed"
)

// Endpoint is the settlement as it was when the army left.
type Endpoint struct {
	ID        entity.SettlementID `json:"id"`
	Name      string              `json:"name"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
}

func endpointOf(s entity.Settlement) Endpoint {
	return Endpoint{ID: s.ID, Name: s.Name, Latitude: s.Latitude, Longitude: s.Longitude}
}

// Transfer is an army in flight. It resolves exactly once, at ArrivalTime.
type Transfer struct {
	ID          int64        `json:"id,string"`
	From        Endpoint     `json:"fromCity"`
	To          Endpoint     `json:"toCity"`
	Amount      float64      `json:"amount"`
	Owner       entity.Owner `json:"owner"`
	StartTime   time.Time    `json:"startTime"`
	ArrivalTime time.Time    `json:"arrivalTime"`
}

func (t Transfer) Duration() time.Duration {
	return t.ArrivalTime.Sub(t.StartTime)
}

type Outcome struct {
	Transfer   Transfer          `json:"transfer"`
	Result     Result            `json:"result"`
	Settlement entity.Settlement `json:"settlement"`
}

// DistanceKm is the great-circle distance between two anchors.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// TravelTime converts a distance at speedKmh into a duration clamped to
// [lo, hi], rounded to the millisecond.
func TravelTime(km, speedKmh float64, lo, hi time.Duration) time.Duration {
	if speedKmh <= 0 {
		return hi
	}
	d := time.Duration(math.Round(km/speedKmh*3600*1000)) * time.Millisecond
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

// transferQueue is a min-heap on arrival time.
type transferQueue []*Transfer

func (q transferQueue) Len() int { return len(q) }

func (q transferQueue) Less(i, j int) bool {
	if q[i].ArrivalTime.Equal(q[j].ArrivalTime) {
		return q[i].ID < q[j].ID
	}
	return q[i].ArrivalTime.Before(q[j].ArrivalTime)
}

func (q transferQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *transferQueue) Push(x any) {
	*q = append(*q, x.(*Transfer))
}

func (q *transferQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return t
}

func (q *transferQueue) popDue(now time.Time) (*Transfer, bool) {
	if q.Len() == 0 || (*q)[0].ArrivalTime.After(now) {
		return nil, false
	}
	return heap.Pop(q).(*Transfer), true
}

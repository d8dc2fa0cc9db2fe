package market

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"
)

type ledger struct {
	state entity.GameState
}

func (l *ledger) GameState() entity.GameState         { return l.state }
func (l *ledger) SetGameState(state entity.GameState) { l.state = state }

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func newTestMarket() (*Market, *ledger, *clock) {
	lg := &ledger{state: entity.InitialGameState()}
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	m := New(lg, logx.Nop(), WithClock(c.now), WithRand(rand.New(rand.NewSource(7))))
	return m, lg, c
}

func TestCreateSell_CancelRestoresStock(t *testing.T) {
	m, lg, _ := newTestMarket()
	before := lg.state.Resources[resource.Wood]

	l, err := m.CreatePlayerListing(CreateListing{Resource: resource.Wood, Amount: 12.3, PricePerUnit: 4, Type: Sell})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := lg.state.Resources[resource.Wood]; got != 487.7 {
		t.Fatalf("wood after listing=%v", got)
	}
	if _, err := m.Cancel(l.ID, OwnerPlayer); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := lg.state.Resources[resource.Wood]; got != before {
		t.Fatalf("wood after cancel=%v want %v", got, before)
	}
	if len(m.Listings()) != 0 {
		t.Fatalf("listing still open")
	}
}

func TestCreateBuy_InsufficientGold(t *testing.T) {
	m, lg, _ := newTestMarket()
	lg.state.Resources[resource.Gold] = 40

	_, err := m.CreatePlayerListing(CreateListing{Resource: resource.Food, Amount: 10, PricePerUnit: 5, Type: Buy})
	if !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("err=%v", err)
	}
	var e *app.Error
	if !errors.As(err, &e) {
		t.Fatalf("not an app error: %v", err)
	}
	if req, _ := e.DataValue("required"); req != 50.0 {
		t.Fatalf("required=%v", req)
	}
	if lg.state.Resources[resource.Gold] != 40 || len(m.Listings()) != 0 {
		t.Fatalf("state changed: gold=%v", lg.state.Resources[resource.Gold])
	}
}

func TestCreateBuy_EscrowsGoldAndRefunds(t *testing.T) {
	m, lg, _ := newTestMarket()
	l, err := m.CreatePlayerListing(CreateListing{Resource: resource.Oil, Amount: 10, PricePerUnit: 1.1, Type: Buy})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := lg.state.Resources[resource.Gold]; got != 489 {
		t.Fatalf("gold=%v", got)
	}
	m.Cancel(l.ID, OwnerPlayer)
	if got := lg.state.Resources[resource.Gold]; got != 500 {
		t.Fatalf("gold after cancel=%v", got)
	}
}

func TestCreateListing_Validation(t *testing.T) {
	m, lg, _ := newTestMarket()
	before := lg.state
	cases := []CreateListing{
		{Resource: resource.Gold, Amount: 1, PricePerUnit: 1, Type: Sell},
		{Resource: resource.Influence, Amount: 1, PricePerUnit: 1, Type: Sell},
		{Resource: resource.Food, Amount: 0, PricePerUnit: 1, Type: Sell},
		{Resource: resource.Food, Amount: 1, PricePerUnit: -1, Type: Buy},
		{Resource: resource.Food, Amount: 1, PricePerUnit: 1, Type: "swap"},
	}
	for _, req := range cases {
		if _, err := m.CreatePlayerListing(req); !errors.Is(err, app.ErrInvalidArgument) {
			t.Fatalf("%+v: err=%v", req, err)
		}
	}
	if _, err := m.CreatePlayerListing(CreateListing{Resource: resource.Steel, Amount: 1, PricePerUnit: 1, Type: Sell}); !errors.Is(err, app.ErrInsufficient) {
		t.Fatalf("selling missing steel: %v", err)
	}
	if lg.state != before {
		t.Fatalf("rejected listings changed the ledger")
	}
}

func TestPurchase_SellListingConservesGold(t *testing.T) {
	m, lg, _ := newTestMarket()
	m.SeedSynthetic()
	var target Listing
	for _, l := range m.Listings() {
		if l.Type == Sell && l.Resource == resource.Food {
			target = l
		}
	}
	goldBefore := lg.state.Resources[resource.Gold]
	foodBefore := lg.state.Resources[resource.Food]
	open := len(m.Listings())

	tx, err := m.Purchase(target.ID, OwnerPlayer)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	cost := total(target.Amount, target.PricePerUnit).InexactFloat64()
	if got := lg.state.Resources[resource.Gold]; got != sub(goldBefore, total(target.Amount, target.PricePerUnit)) {
		t.Fatalf("gold=%v want %v", got, goldBefore-cost)
	}
	if got := lg.state.Resources[resource.Food]; got != foodBefore+target.Amount {
		t.Fatalf("food=%v", got)
	}
	if tx.TotalPrice != cost || tx.Seller != OwnerAI || tx.Buyer != OwnerPlayer {
		t.Fatalf("transaction=%+v", tx)
	}
	if len(m.Listings()) != open-1 || len(m.Transactions(0)) != 1 {
		t.Fatalf("listings=%d transactions=%d", len(m.Listings()), len(m.Transactions(0)))
	}
	if _, ok := m.Listing(target.ID); ok {
		t.Fatalf("listing survived the purchase")
	}
}

func TestPurchase_BuyListingDeliversResource(t *testing.T) {
	m, lg, _ := newTestMarket()
	m.SeedSynthetic()
	var target Listing
	for _, l := range m.Listings() {
		if l.Type == Buy && l.Resource == resource.Wood {
			target = l
		}
	}
	tx, err := m.Purchase(target.ID, OwnerPlayer)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if got := lg.state.Resources[resource.Wood]; got != 500-target.Amount {
		t.Fatalf("wood=%v", got)
	}
	if tx.Seller != OwnerPlayer || tx.Buyer != OwnerAI {
		t.Fatalf("transaction=%+v", tx)
	}

	for _, l := range m.Listings() {
		if l.Type == Buy && l.Resource == resource.Steel {
			if _, err := m.Purchase(l.ID, OwnerPlayer); !errors.Is(err, app.ErrInsufficient) {
				t.Fatalf("delivered steel the player does not have: %v", err)
			}
		}
	}
}

func TestPurchase_Rejections(t *testing.T) {
	m, lg, _ := newTestMarket()
	if _, err := m.Purchase(99, OwnerPlayer); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("missing listing: %v", err)
	}

	own, _ := m.CreatePlayerListing(CreateListing{Resource: resource.Food, Amount: 5, PricePerUnit: 2, Type: Sell})
	if _, err := m.Purchase(own.ID, OwnerPlayer); !errors.Is(err, app.ErrForbidden) {
		t.Fatalf("bought own listing: %v", err)
	}

	m.SeedSynthetic()
	lg.state.Resources[resource.Gold] = 0
	for _, l := range m.Listings() {
		if l.Type == Sell && l.Owner == OwnerAI {
			if _, err := m.Purchase(l.ID, OwnerPlayer); !errors.Is(err, app.ErrInsufficient) {
				t.Fatalf("purchase without gold: %v", err)
			}
			break
		}
	}
	if len(m.Transactions(0)) != 0 {
		t.Fatalf("failed purchases recorded transactions")
	}
}

func TestPurchase_AIBuysPlayerListing(t *testing.T) {
	m, lg, _ := newTestMarket()
	l, _ := m.CreatePlayerListing(CreateListing{Resource: resource.Food, Amount: 10, PricePerUnit: 3, Type: Sell})
	if _, err := m.Purchase(l.ID, OwnerAI); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if lg.state.Resources[resource.Gold] != 530 || lg.state.Resources[resource.Food] != 990 {
		t.Fatalf("gold=%v food=%v", lg.state.Resources[resource.Gold], lg.state.Resources[resource.Food])
	}
}

func TestCancel_OnlyOwner(t *testing.T) {
	m, _, _ := newTestMarket()
	m.SeedSynthetic()
	ai := m.Listings()[0]
	if _, err := m.Cancel(ai.ID, OwnerPlayer); !errors.Is(err, app.ErrForbidden) {
		t.Fatalf("cancelled a synthetic listing: %v", err)
	}
	if _, err := m.Cancel(12345, OwnerPlayer); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("missing listing: %v", err)
	}
}

func TestSeedSynthetic_PriceBands(t *testing.T) {
	m, _, _ := newTestMarket()
	if n := m.SeedSynthetic(); n != 12 {
		t.Fatalf("seeded=%d", n)
	}
	for _, l := range m.Listings() {
		base := BasePrices[l.Resource]
		switch l.Type {
		case Sell:
			if l.PricePerUnit < base*0.8-0.01 || l.PricePerUnit > base*1.2+0.01 || l.Amount < 5 || l.Amount > 14 {
				t.Fatalf("sell out of band: %+v", l)
			}
		case Buy:
			if l.PricePerUnit < base*0.7-0.01 || l.PricePerUnit > base+0.01 || l.Amount < 10 || l.Amount > 24 {
				t.Fatalf("buy out of band: %+v", l)
			}
		}
		if l.Owner != OwnerAI {
			t.Fatalf("owner=%s", l.Owner)
		}
	}
	if len(m.PriceHistory(resource.Food, 0)) != 1 {
		t.Fatalf("history=%v", m.PriceHistory(resource.Food, 0))
	}
}

func TestMaintain_PurgesAndReplenishes(t *testing.T) {
	m, _, c := newTestMarket()
	m.SeedSynthetic()
	own, _ := m.CreatePlayerListing(CreateListing{Resource: resource.Food, Amount: 1, PricePerUnit: 1, Type: Sell})

	purged, seeded := m.Maintain()
	if purged != 0 || seeded != 0 {
		t.Fatalf("fresh book touched: purged=%d seeded=%d", purged, seeded)
	}

	c.t = c.t.Add(25 * time.Hour)
	purged, seeded = m.Maintain()
	if purged != 12 || seeded != 12 {
		t.Fatalf("purged=%d seeded=%d", purged, seeded)
	}
	if _, ok := m.Listing(own.ID); !ok {
		t.Fatalf("player listing expired")
	}
}

func TestPriceHistory_RingAndWindow(t *testing.T) {
	m, _, c := newTestMarket()
	for i := 0; i < 150; i++ {
		c.t = c.t.Add(time.Hour)
		m.recordPrice(resource.Metal, float64(i))
	}
	h := m.PriceHistory(resource.Metal, 0)
	if len(h) != HistoryLimit || h[0].Price != 50 || h[len(h)-1].Price != 149 {
		t.Fatalf("len=%d first=%v", len(h), h[0].Price)
	}
	if got := len(m.PriceHistory(resource.Metal, 1)); got != 25 {
		t.Fatalf("last day=%d", got)
	}
}

func TestTransactions_Limit(t *testing.T) {
	m, _, _ := newTestMarket()
	for i := 0; i < 3; i++ {
		l, _ := m.CreatePlayerListing(CreateListing{Resource: resource.Food, Amount: 1, PricePerUnit: 1, Type: Sell})
		m.Purchase(l.ID, OwnerAI)
	}
	if got := m.Transactions(2); len(got) != 2 || got[1].ListingID != 3 {
		t.Fatalf("transactions=%+v", got)
	}
	if len(m.Transactions(0)) != 3 {
		t.Fatalf("all transactions=%d", len(m.Transactions(0)))
	}
}

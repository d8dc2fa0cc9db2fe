package market

import (
	"math/rand"
	"sort"
	"time"

	"github.com/Chinaskijl/stttg/internal/shared/gameconfig/resource"
	"github.com/Chinaskijl/stttg/internal/shared/utils"
	"github.com/Chinaskijl/stttg/internal/world/app"
	"github.com/Chinaskijl/stttg/internal/world/entity"
	"github.com/Chinaskijl/stttg/modules/kit/logx"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	HistoryLimit     = 100
	SyntheticTTL     = 24 * time.Hour
	MinSyntheticBook = 5
)

// BasePrices anchor the synthetic counterparty's quotes.
var BasePrices = map[resource.Resource]float64{
	resource.Food:    2,
	resource.Wood:    3,
	resource.Oil:     5,
	resource.Metal:   7,
	resource.Steel:   12,
	resource.Weapons: 20,
}

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

type Owner string

const (
	OwnerPlayer Owner = "player"
	OwnerAI     Owner = "ai"
)

type Listing struct {
	ID           int64             `json:"id"`
	Resource     resource.Resource `json:"resourceType"`
	Amount       float64           `json:"amount"`
	PricePerUnit float64           `json:"pricePerUnit"`
	Type         Side              `json:"type"`
	CreatedAt    time.Time         `json:"createdAt"`
	Owner        Owner             `json:"owner"`
}

type Transaction struct {
	ID           int64             `json:"id,string"`
	ListingID    int64             `json:"listingId"`
	Resource     resource.Resource `json:"resourceType"`
	Amount       float64           `json:"amount"`
	PricePerUnit float64           `json:"pricePerUnit"`
	TotalPrice   float64           `json:"totalPrice"`
	Timestamp    time.Time         `json:"timestamp"`
	Seller       Owner             `json:"seller"`
	Buyer        Owner             `json:"buyer"`
}

type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

type CreateListing struct {
	Resource     resource.Resource
	Amount       float64
	PricePerUnit float64
	Type         Side
}

// Ledger is the shared resource pool trades settle against.
type Ledger interface {
	GameState() entity.GameState
	SetGameState(state entity.GameState)
}

// Book is a point-in-time copy of the market for archiving.
type Book struct {
	Listings     []Listing                          `json:"listings"`
	Transactions []Transaction                      `json:"transactions"`
	History      map[resource.Resource][]PricePoint `json:"history"`
}

type Option func(m *Market)

func WithClock(now func() time.Time) Option {
	return func(m *Market) { m.now = now }
}

func WithRand(r *rand.Rand) Option {
	return func(m *Market) { m.rng = r }
}

func WithIDs(ids utils.IDGenerator) Option {
	return func(m *Market) { m.ids = ids }
}

// Market is the order book. It is owned by the world actor and is not safe
// for concurrent use.
type Market struct {
	ledger       Ledger
	log          logx.Logger
	now          func() time.Time
	rng          *rand.Rand
	ids          utils.IDGenerator
	seq          int64
	listings     map[int64]*Listing
	transactions []Transaction
	history      map[resource.Resource][]PricePoint
}

func New(ledger Ledger, l logx.Logger, opts ...Option) *Market {
	if l == nil {
		l = logx.Nop()
	}
	m := &Market{
		ledger:   ledger,
		log:      l,
		now:      time.Now,
		listings: make(map[int64]*Listing),
		history:  make(map[resource.Resource][]PricePoint),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(m.now().UnixNano()))
	}
	if m.ids == nil {
		m.ids = &sequence{}
	}
	return m
}

func (m *Market) nextListingID() int64 {
	m.seq++
	return m.seq
}

// CreatePlayerListing escrows the offered resource (sell) or the gold for
// the whole order (buy) and opens the listing.
func (m *Market) CreatePlayerListing(req CreateListing) (Listing, error) {
	if !req.Type.Valid() {
		return Listing{}, app.Invalid(app.ReasonListingSide).WithData("type", string(req.Type))
	}
	if !req.Resource.Tradable() {
		return Listing{}, app.Invalid(app.ReasonListingResource).WithData("resource", req.Resource.String())
	}
	if !(req.Amount > 0) || !(req.PricePerUnit > 0) {
		return Listing{}, app.Invalid(app.ReasonListingAmount).
			WithData("amount", req.Amount).
			WithData("price_per_unit", req.PricePerUnit)
	}

	state := m.ledger.GameState()
	switch req.Type {
	case Sell:
		stock := state.Resources[req.Resource]
		if stock < req.Amount {
			return Listing{}, app.Insufficient(app.ReasonListingStock, req.Resource.String(), req.Amount, stock)
		}
		state.Resources[req.Resource] = sub(stock, decimal.NewFromFloat(req.Amount))
	case Buy:
		cost := total(req.Amount, req.PricePerUnit)
		gold := state.Resources[resource.Gold]
		if decimal.NewFromFloat(gold).LessThan(cost) {
			return Listing{}, app.Insufficient(app.ReasonListingGold, resource.Gold.String(), cost.InexactFloat64(), gold)
		}
		state.Resources[resource.Gold] = sub(gold, cost)
	}
	m.ledger.SetGameState(state)

	l := &Listing{
		ID:           m.nextListingID(),
		Resource:     req.Resource,
		Amount:       req.Amount,
		PricePerUnit: req.PricePerUnit,
		Type:         req.Type,
		CreatedAt:    m.now(),
		Owner:        OwnerPlayer,
	}
	m.listings[l.ID] = l
	m.recordPrice(req.Resource, req.PricePerUnit)
	m.log.Info("market listing created",
		zap.Int64("listing_id", l.ID),
		zap.String("resource", l.Resource.String()),
		zap.String("type", string(l.Type)),
		zap.Float64("amount", l.Amount),
		zap.Float64("price", l.PricePerUnit),
	)
	return *l, nil
}

// Purchase fulfils exactly one listing in full on behalf of buyer.
func (m *Market) Purchase(listingID int64, buyer Owner) (Transaction, error) {
	l, ok := m.listings[listingID]
	if !ok {
		return Transaction{}, app.ErrNotFound.WithReason(app.ReasonListingNotFound).WithData("listing_id", listingID)
	}
	if l.Owner == buyer {
		return Transaction{}, app.ErrForbidden.WithReason(app.ReasonCannotBuyOwn).WithData("listing_id", listingID)
	}

	cost := total(l.Amount, l.PricePerUnit)
	state := m.ledger.GameState()
	gold := state.Resources[resource.Gold]
	stock := state.Resources[l.Resource]

	switch {
	case l.Type == Sell && buyer == OwnerPlayer:
		if decimal.NewFromFloat(gold).LessThan(cost) {
			return Transaction{}, app.Insufficient(app.ReasonPurchaseGold, resource.Gold.String(), cost.InexactFloat64(), gold)
		}
		state.Resources[resource.Gold] = sub(gold, cost)
		state.Resources[l.Resource] = add(stock, decimal.NewFromFloat(l.Amount))
	case l.Type == Sell:
		// the player's escrowed stock is already gone, only the gold comes back
		state.Resources[resource.Gold] = add(gold, cost)
	case l.Type == Buy && buyer == OwnerPlayer:
		if stock < l.Amount {
			return Transaction{}, app.Insufficient(app.ReasonPurchaseStock, l.Resource.String(), l.Amount, stock)
		}
		state.Resources[l.Resource] = sub(stock, decimal.NewFromFloat(l.Amount))
		state.Resources[resource.Gold] = add(gold, cost)
	default:
		// escrowed gold pays for the delivery
		state.Resources[l.Resource] = add(stock, decimal.NewFromFloat(l.Amount))
	}
	m.ledger.SetGameState(state)

	tx := Transaction{
		ID:           m.ids.NextID(),
		ListingID:    l.ID,
		Resource:     l.Resource,
		Amount:       l.Amount,
		PricePerUnit: l.PricePerUnit,
		TotalPrice:   cost.InexactFloat64(),
		Timestamp:    m.now(),
		Seller:       l.Owner,
		Buyer:        buyer,
	}
	if l.Type == Buy {
		tx.Seller, tx.Buyer = buyer, l.Owner
	}
	m.transactions = append(m.transactions, tx)
	delete(m.listings, l.ID)
	m.recordPrice(l.Resource, l.PricePerUnit)
	m.log.Info("market listing fulfilled",
		zap.Int64("listing_id", l.ID),
		zap.Int64("transaction_id", tx.ID),
		zap.String("buyer", string(buyer)),
		zap.Float64("total", tx.TotalPrice),
	)
	return tx, nil
}

// Cancel removes the owner's listing and refunds the escrow in full.
func (m *Market) Cancel(listingID int64, owner Owner) (Listing, error) {
	l, ok := m.listings[listingID]
	if !ok {
		return Listing{}, app.ErrNotFound.WithReason(app.ReasonListingNotFound).WithData("listing_id", listingID)
	}
	if l.Owner != owner {
		return Listing{}, app.ErrForbidden.WithReason(app.ReasonNotListingOwner).WithData("listing_id", listingID)
	}
	if owner == OwnerPlayer {
		state := m.ledger.GameState()
		switch l.Type {
		case Sell:
			state.Resources[l.Resource] = add(state.Resources[l.Resource], decimal.NewFromFloat(l.Amount))
		case Buy:
			state.Resources[resource.Gold] = add(state.Resources[resource.Gold], total(l.Amount, l.PricePerUnit))
		}
		m.ledger.SetGameState(state)
	}
	delete(m.listings, l.ID)
	return *l, nil
}

// Listings returns the open orders ordered by id.
func (m *Market) Listings() []Listing {
	out := make([]Listing, 0, len(m.listings))
	for _, l := range m.listings {
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Market) Listing(id int64) (Listing, bool) {
	l, ok := m.listings[id]
	if !ok {
		return Listing{}, false
	}
	return *l, true
}

// Transactions returns the last limit transactions, all when limit <= 0.
func (m *Market) Transactions(limit int) []Transaction {
	from := 0
	if limit > 0 && limit < len(m.transactions) {
		from = len(m.transactions) - limit
	}
	return append([]Transaction(nil), m.transactions[from:]...)
}

// PriceHistory returns the recorded prices of r, within the last days when
// days > 0.
func (m *Market) PriceHistory(r resource.Resource, days int) []PricePoint {
	points := m.history[r]
	if days <= 0 {
		return append([]PricePoint{}, points...)
	}
	cutoff := m.now().Add(-time.Duration(days) * 24 * time.Hour).UnixMilli()
	out := make([]PricePoint, 0, len(points))
	for _, p := range points {
		if p.Timestamp >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

func (m *Market) recordPrice(r resource.Resource, price float64) {
	h := append(m.history[r], PricePoint{Timestamp: m.now().UnixMilli(), Price: price})
	if len(h) > HistoryLimit {
		h = append([]PricePoint(nil), h[len(h)-HistoryLimit:]...)
	}
	m.history[r] = h
}

// SeedSynthetic opens one sell and one buy order per tradable resource on
// behalf of the synthetic counterparty.
func (m *Market) SeedSynthetic() int {
	created := 0
	for _, r := range resource.TradableAll() {
		base, ok := BasePrices[r]
		if !ok {
			continue
		}
		sellPrice := resource.Round(base*(1+(m.rng.Float64()*0.4-0.2)), 2)
		buyPrice := resource.Round(base*(1-m.rng.Float64()*0.3), 2)
		now := m.now()

		sell := &Listing{
			ID:           m.nextListingID(),
			Resource:     r,
			Amount:       float64(m.rng.Intn(10) + 5),
			PricePerUnit: sellPrice,
			Type:         Sell,
			CreatedAt:    now,
			Owner:        OwnerAI,
		}
		buy := &Listing{
			ID:           m.nextListingID(),
			Resource:     r,
			Amount:       float64(m.rng.Intn(15) + 10),
			PricePerUnit: buyPrice,
			Type:         Buy,
			CreatedAt:    now,
			Owner:        OwnerAI,
		}
		m.listings[sell.ID] = sell
		m.listings[buy.ID] = buy
		m.recordPrice(r, resource.Round((sellPrice+buyPrice)/2, 2))
		created += 2
	}
	return created
}

// Maintain drops synthetic orders older than a day and tops the book up
// when too few remain. Player orders never expire.
func (m *Market) Maintain() (purged, seeded int) {
	cutoff := m.now().Add(-SyntheticTTL)
	synthetic := 0
	for id, l := range m.listings {
		if l.Owner != OwnerAI {
			continue
		}
		if !l.CreatedAt.After(cutoff) {
			delete(m.listings, id)
			purged++
			continue
		}
		synthetic++
	}
	if synthetic < MinSyntheticBook {
		seeded = m.SeedSynthetic()
	}
	m.log.Info("market maintenance",
		zap.Int("purged", purged),
		zap.Int("seeded", seeded),
		zap.Int("open", len(m.listings)),
	)
	return purged, seeded
}

// Book copies the whole market.
func (m *Market) Book() Book {
	b := Book{
		Listings:     m.Listings(),
		Transactions: m.Transactions(0),
		History:      make(map[resource.Resource][]PricePoint, len(m.history)),
	}
	for r, h := range m.history {
		b.History[r] = append([]PricePoint(nil), h...)
	}
	return b
}

func total(amount, price float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(price))
}

func add(v float64, d decimal.Decimal) float64 {
	return decimal.NewFromFloat(v).Add(d).InexactFloat64()
}

func sub(v float64, d decimal.Decimal) float64 {
	return decimal.NewFromFloat(v).Sub(d).InexactFloat64()
}

// sequence is the fallback transaction id source when no snowflake is wired.
type sequence struct {
	n int64
}

func (s *sequence) NextID() int64 {
	s.n++
	return s.n
}

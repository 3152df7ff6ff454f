package mockapi

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"skaladash/internal/envelope"
)

// Error is a backend rejection carried back to the caller as a failure
// envelope.
type Error struct {
	Code   int
	Name   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Name
	}
	return e.Name + ": " + e.Detail
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) with(detail string) *Error {
	return &Error{Code: e.Code, Name: e.Name, Detail: detail}
}

var (
	ErrSystem               = &Error{Code: envelope.CodeSystemError, Name: "SYSTEM_ERROR"}
	ErrParameter            = &Error{Code: envelope.CodeParameter, Name: "PARAMETER_ERROR"}
	ErrDuplicated           = &Error{Code: envelope.CodeDataDuplicated, Name: "DATA_DUPLICATED"}
	ErrNotFound             = &Error{Code: envelope.CodeDataNotFound, Name: "DATA_NOT_FOUND"}
	ErrNotAuthenticated     = &Error{Code: envelope.CodeNotAuthenticated, Name: "NOT_AUTHENTICATED"}
	ErrInsufficientFunds    = &Error{Code: envelope.CodeInsufficientFund, Name: "INSUFFICIENT_FUNDS"}
	ErrInsufficientQuantity = &Error{Code: envelope.CodeInsufficientQty, Name: "INSUFFICIENT_QUANTITY"}
)

const (
	DefaultInitialMoney = 100000
	defaultPageSize     = 10
)

// Player mirrors the backend's player row, password included: the list
// endpoint really does return it.
type Player struct {
	PlayerID       string  `json:"playerId"`
	PlayerPassword string  `json:"playerPassword"`
	PlayerMoney    float64 `json:"playerMoney"`
	InitialMoney   float64 `json:"initialMoney"`
}

type Stock struct {
	ID         int64   `json:"id"`
	StockName  string  `json:"stockName"`
	StockPrice float64 `json:"stockPrice"`
}

type Holding struct {
	StockID    int64   `json:"stockId"`
	StockName  string  `json:"stockName"`
	StockPrice float64 `json:"stockPrice"`
	Quantity   int     `json:"quantity"`
}

type PlayerDetail struct {
	PlayerID    string    `json:"playerId"`
	PlayerMoney float64   `json:"playerMoney"`
	Stocks      []Holding `json:"stocks"`
}

type WatchEntry struct {
	ID         int64   `json:"id"`
	StockID    int64   `json:"stockId"`
	StockName  string  `json:"stockName"`
	StockPrice float64 `json:"stockPrice"`
}

type RankEntry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"playerId"`
	ProfitRate  float64 `json:"profitRate"`
	TotalAssets float64 `json:"totalAssets"`
}

type PagedList[T any] struct {
	Total  int `json:"total"`
	Count  int `json:"count"`
	Offset int `json:"offset"`
	List   []T `json:"list"`
}

type watchRow struct {
	id      int64
	stockID int64
}

// Backend is the in-memory game state behind the mock server.
type Backend struct {
	mu          sync.Mutex
	players     map[string]*Player
	stocks      map[int64]*Stock
	holdings    map[string]map[int64]int
	watch       map[string][]watchRow
	nextStockID int64
	nextWatchID int64
}

func NewBackend() *Backend {
	return &Backend{
		players:  map[string]*Player{},
		stocks:   map[int64]*Stock{},
		holdings: map[string]map[int64]int{},
		watch:    map[string][]watchRow{},
	}
}

var defaultStocks = []Stock{
	{StockName: "SKALA", StockPrice: 1000},
	{StockName: "SK Hynix", StockPrice: 182000},
	{StockName: "SK Telecom", StockPrice: 51500},
	{StockName: "Samsung Electronics", StockPrice: 71200},
	{StockName: "NAVER", StockPrice: 188500},
	{StockName: "Kakao", StockPrice: 41250},
	{StockName: "Hyundai Motor", StockPrice: 243000},
	{StockName: "LG Energy Solution", StockPrice: 372500},
}

func (b *Backend) SeedDefaults() {
	for _, s := range defaultStocks {
		b.AddStock(s.StockName, s.StockPrice)
	}
}

func (b *Backend) AddStock(name string, price float64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextStockID++
	id := b.nextStockID
	b.stocks[id] = &Stock{ID: id, StockName: name, StockPrice: price}
	return id
}

func (b *Backend) CreatePlayer(playerID, password string, money float64) error {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" || password == "" {
		return ErrParameter.with("playerId, playerPassword")
	}
	if money < 0 || math.IsNaN(money) || math.IsInf(money, 0) {
		return ErrParameter.with("playerMoney")
	}
	if money == 0 {
		money = DefaultInitialMoney
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.players[playerID]; ok {
		return ErrDuplicated
	}
	b.players[playerID] = &Player{PlayerID: playerID, PlayerPassword: password, PlayerMoney: money, InitialMoney: money}
	return nil
}

// Login checks the credentials and returns the player without its password.
func (b *Backend) Login(playerID, password string) (Player, error) {
	if strings.TrimSpace(playerID) == "" || password == "" {
		return Player{}, ErrParameter.with("playerId, playerPassword")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.players[playerID]
	if !ok {
		return Player{}, ErrNotFound
	}
	if p.PlayerPassword != password {
		return Player{}, ErrNotAuthenticated
	}
	out := *p
	out.PlayerPassword = ""
	return out, nil
}

func (b *Backend) ListPlayers(offset, count int) PagedList[Player] {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := make([]Player, 0, len(b.players))
	for _, p := range b.players {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].PlayerID < all[j].PlayerID })
	return page(all, offset, count)
}

func (b *Backend) Player(playerID string) (PlayerDetail, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.players[playerID]
	if !ok {
		return PlayerDetail{}, ErrNotFound.with("Player not found")
	}
	out := PlayerDetail{PlayerID: p.PlayerID, PlayerMoney: p.PlayerMoney, Stocks: []Holding{}}
	for _, sid := range sortedKeys(b.holdings[playerID]) {
		s := b.stocks[sid]
		out.Stocks = append(out.Stocks, Holding{StockID: sid, StockName: s.StockName, StockPrice: s.StockPrice, Quantity: b.holdings[playerID][sid]})
	}
	return out, nil
}

func (b *Backend) ListStocks(offset, count int) PagedList[Stock] {
	b.mu.Lock()
	defer b.mu.Unlock()
	all := make([]Stock, 0, len(b.stocks))
	for _, s := range b.stocks {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, offset, count)
}

func (b *Backend) Stock(id int64) (Stock, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.stocks[id]
	if !ok {
		return Stock{}, ErrNotFound.with("Stock not found")
	}
	return *s, nil
}

func (b *Backend) Buy(playerID string, stockID int64, qty int) error {
	if qty < 1 {
		return ErrParameter.with("quantity")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, s, err := b.playerAndStock(playerID, stockID)
	if err != nil {
		return err
	}
	cost := float64(qty) * s.StockPrice
	if p.PlayerMoney-cost < 0 {
		return ErrInsufficientFunds
	}
	p.PlayerMoney -= cost
	if b.holdings[playerID] == nil {
		b.holdings[playerID] = map[int64]int{}
	}
	b.holdings[playerID][stockID] += qty
	return nil
}

func (b *Backend) Sell(playerID string, stockID int64, qty int) error {
	if qty < 1 {
		return ErrParameter.with("quantity")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, s, err := b.playerAndStock(playerID, stockID)
	if err != nil {
		return err
	}
	held, ok := b.holdings[playerID][stockID]
	if !ok {
		return ErrNotFound.with("Player does not own this stock")
	}
	if held < qty {
		return ErrInsufficientQuantity
	}
	if held == qty {
		delete(b.holdings[playerID], stockID)
	} else {
		b.holdings[playerID][stockID] = held - qty
	}
	p.PlayerMoney += float64(qty) * s.StockPrice
	return nil
}

func (b *Backend) Watchlist(playerID string) []WatchEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]WatchEntry, 0, len(b.watch[playerID]))
	for _, row := range b.watch[playerID] {
		s := b.stocks[row.stockID]
		out = append(out, WatchEntry{ID: row.id, StockID: s.ID, StockName: s.StockName, StockPrice: s.StockPrice})
	}
	return out
}

func (b *Backend) AddWatch(playerID string, stockID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, _, err := b.playerAndStock(playerID, stockID); err != nil {
		return err
	}
	for _, row := range b.watch[playerID] {
		if row.stockID == stockID {
			return ErrDuplicated.with("Stock already in watchlist")
		}
	}
	b.nextWatchID++
	b.watch[playerID] = append(b.watch[playerID], watchRow{id: b.nextWatchID, stockID: stockID})
	return nil
}

func (b *Backend) RemoveWatch(playerID string, stockID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, _, err := b.playerAndStock(playerID, stockID); err != nil {
		return err
	}
	rows := b.watch[playerID]
	for i, row := range rows {
		if row.stockID == stockID {
			b.watch[playerID] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound.with("Stock not found in watchlist")
}

// Ranking orders players by profit rate against their initial money.
func (b *Backend) Ranking() []RankEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RankEntry, 0, len(b.players))
	for _, p := range b.players {
		total := p.PlayerMoney
		for sid, qty := range b.holdings[p.PlayerID] {
			total += float64(qty) * b.stocks[sid].StockPrice
		}
		rate := 0.0
		if p.InitialMoney > 0 {
			rate = (total - p.InitialMoney) / p.InitialMoney
		}
		out = append(out, RankEntry{PlayerID: p.PlayerID, ProfitRate: rate, TotalAssets: total})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProfitRate != out[j].ProfitRate {
			return out[i].ProfitRate > out[j].ProfitRate
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

func (b *Backend) playerAndStock(playerID string, stockID int64) (*Player, *Stock, error) {
	p, ok := b.players[playerID]
	if !ok {
		return nil, nil, ErrNotFound.with("Player not found")
	}
	s, ok := b.stocks[stockID]
	if !ok {
		return nil, nil, ErrNotFound.with("Stock not found")
	}
	return p, s, nil
}

// page treats offset as a page index, not a row offset.
func page[T any](all []T, offset, count int) PagedList[T] {
	if count <= 0 {
		count = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	start := offset * count
	if start > len(all) {
		start = len(all)
	}
	end := min(start+count, len(all))
	list := append([]T{}, all[start:end]...)
	return PagedList[T]{Total: len(all), Count: len(list), Offset: offset, List: list}
}

func sortedKeys(m map[int64]int) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func asBackendError(err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	return ErrSystem.with(fmt.Sprint(err))
}

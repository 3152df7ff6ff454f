// Package dashboard runs the operator's actions: it checks preconditions,
// issues exactly one backend call per action and reconciles the session and
// the cached views with the outcome.
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/envelope"
	"skaladash/internal/errtext"
	"skaladash/internal/session"
)

const DefaultInitialMoney = 100000

type Level int

const (
	LevelSuccess Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

// Result is what the shell shows after an action. Detail carries the raw
// backend message when Message is a curated text.
type Result struct {
	OK      bool
	Level   Level
	Message string
	Detail  string
	Count   int
}

func success(msg string) Result {
	return Result{OK: true, Level: LevelSuccess, Message: msg}
}

func warn(msg string) Result {
	return Result{Level: LevelWarn, Message: msg}
}

func failure(msg, detail string) Result {
	if detail == msg {
		detail = ""
	}
	return Result{Level: LevelError, Message: msg, Detail: detail}
}

// API is the part of the backend client the controller drives.
type API interface {
	Signup(ctx context.Context, playerID, password string, money float64) envelope.Outcome
	Login(ctx context.Context, playerID, password string) envelope.Outcome
	Buy(ctx context.Context, id client.StockID, qty int) envelope.Outcome
	Sell(ctx context.Context, id client.StockID, qty int) envelope.Outcome
	AddWatch(ctx context.Context, id client.StockID) envelope.Outcome
	RemoveWatch(ctx context.Context, id client.StockID) envelope.Outcome
	PlayerDetail(ctx context.Context, playerID string) envelope.Outcome
	StockDetail(ctx context.Context, id client.StockID) envelope.Outcome
}

type Controller struct {
	api   API
	store *session.Store
	views *cache.Cache
	tr    *errtext.Translator
	log   *slog.Logger
}

func New(api API, store *session.Store, views *cache.Cache, tr *errtext.Translator, logger *slog.Logger) *Controller {
	if tr == nil {
		tr = errtext.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{api: api, store: store, views: views, tr: tr, log: logger}
}

func (c *Controller) Session() session.Session {
	return c.store.Snapshot()
}

func (c *Controller) Signup(ctx context.Context, playerID, password string, money float64) Result {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" || strings.TrimSpace(password) == "" {
		return warn(msgCredentialsRequired)
	}
	if money < 0 {
		return warn(msgBalanceInvalid)
	}
	out := c.api.Signup(ctx, playerID, password, money)
	switch {
	case out.OK():
		c.log.Info("signup succeeded", "player_id", playerID)
		return success(msgSignupDone)
	case out.Kind == envelope.KindTransport:
		c.log.Warn("signup unreachable", "player_id", playerID)
		return failure(msgSignupUnavailable, "")
	default:
		c.log.Info("signup rejected", "player_id", playerID, "code", out.Code)
		return failure(msgSignupFailed, errtext.Generic(out))
	}
}

// Login authenticates the session. A failed attempt leaves the session as it
// was, including an already authenticated one.
func (c *Controller) Login(ctx context.Context, playerID, password string) Result {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" || strings.TrimSpace(password) == "" {
		return warn(msgCredentialsRequired)
	}
	out := c.api.Login(ctx, playerID, password)
	if !out.OK() {
		c.log.Info("login rejected", "player_id", playerID, "kind", out.Kind.String(), "code", out.Code)
		detail := errtext.Generic(out)
		if out.Kind == envelope.KindTransport {
			detail = ""
		}
		return failure(c.tr.Translate(out), detail)
	}
	if prev := c.store.Identity(); prev != "" && prev != playerID {
		c.views.Drop(cache.Watchlist)
	}
	c.store.OnLoginSuccess(playerID)
	c.log.Info("login succeeded", "player_id", playerID)
	return success(fmt.Sprintf(msgWelcome, playerID))
}

// Logout is local: the credential is dropped without telling the backend.
// Logging out an anonymous session changes nothing.
func (c *Controller) Logout() Result {
	if !c.store.Authenticated() {
		return Result{Level: LevelInfo, Message: msgNotLoggedIn}
	}
	identity := c.store.Identity()
	c.store.OnLogout()
	c.views.Drop(cache.Watchlist)
	c.log.Info("logged out", "player_id", identity)
	return success(msgLoggedOut)
}

func (c *Controller) Buy(ctx context.Context, id client.StockID, qty int) Result {
	return c.trade(ctx, "buy", id, qty)
}

func (c *Controller) Sell(ctx context.Context, id client.StockID, qty int) Result {
	return c.trade(ctx, "sell", id, qty)
}

func (c *Controller) trade(ctx context.Context, side string, id client.StockID, qty int) Result {
	if r, ok := c.gate(side); !ok {
		return r
	}
	if id.Empty() {
		return warn(msgStockRequired)
	}
	if qty < 1 {
		return warn(msgQuantityInvalid)
	}
	if side == "sell" {
		return c.settle(side, c.api.Sell(ctx, id, qty), msgSellDone)
	}
	return c.settle(side, c.api.Buy(ctx, id, qty), msgBuyDone)
}

func (c *Controller) Watch(ctx context.Context, id client.StockID) Result {
	if r, ok := c.gate("watch"); !ok {
		return r
	}
	if id.Empty() {
		return warn(msgStockRequired)
	}
	return c.settle("watch", c.api.AddWatch(ctx, id), msgWatchAdded)
}

// Unwatch issues the removal even when id is not in the cached watchlist;
// the cached list only feeds the selector.
func (c *Controller) Unwatch(ctx context.Context, id client.StockID) Result {
	if r, ok := c.gate("unwatch"); !ok {
		return r
	}
	if id.Empty() {
		return warn(msgStockRequired)
	}
	return c.settle("unwatch", c.api.RemoveWatch(ctx, id), msgWatchRemoved)
}

// Refresh reloads one view. It is not gated: public lists load for anyone,
// and the watchlist reports the backend's answer.
func (c *Controller) Refresh(ctx context.Context, kind cache.Kind) Result {
	n, out := c.views.Refresh(ctx, kind)
	if !out.OK() {
		if kind == cache.Watchlist && isAuthFailure(out) {
			c.expire("refresh watchlist")
		}
		return failure(errtext.Generic(out), "")
	}
	msg := fmt.Sprintf(msgItemsLoaded, n)
	if kind == cache.Players {
		msg = fmt.Sprintf(msgPlayersLoaded, n)
	}
	r := success(msg)
	r.Count = n
	return r
}

func (c *Controller) Snapshot(kind cache.Kind) cache.Snapshot {
	return c.views.Get(kind)
}

// StockChoices lists the ids of the loaded stocks.
func (c *Controller) StockChoices() []client.StockID {
	return idsOf(c.views.Get(cache.Stocks), "id")
}

// WatchCandidates lists the stock ids in the loaded watchlist.
func (c *Controller) WatchCandidates() []client.StockID {
	return idsOf(c.views.Get(cache.Watchlist), "stockId")
}

func (c *Controller) PlayerDetail(ctx context.Context, playerID string) (cache.Record, Result) {
	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, warn(msgPlayerRequired)
	}
	return c.detail(c.api.PlayerDetail(ctx, playerID), true)
}

func (c *Controller) StockDetail(ctx context.Context, id client.StockID) (cache.Record, Result) {
	if id.Empty() {
		return nil, warn(msgStockRequired)
	}
	return c.detail(c.api.StockDetail(ctx, id), false)
}

func (c *Controller) detail(out envelope.Outcome, redact bool) (cache.Record, Result) {
	if !out.OK() {
		return nil, failure(errtext.Generic(out), "")
	}
	rec := cache.Record{}
	body := envelope.BodyOf(out)
	if len(body) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&rec); err != nil {
			return nil, failure(envelope.GenericFailure, "")
		}
	}
	if redact {
		rec = cache.Redact(cache.Snapshot{rec})[0]
	}
	return rec, Result{OK: true, Level: LevelInfo}
}

// Gate reports whether a gated action may proceed, and if not, the result to
// show instead. Every gated operation calls it again before its request.
func (c *Controller) Gate(action string) (Result, bool) {
	return c.gate(action)
}

// gate re-checks authentication regardless of what the shell shows.
func (c *Controller) gate(action string) (Result, bool) {
	if c.store.Authenticated() {
		return Result{}, true
	}
	c.log.Warn("gated action rejected locally", "action", action)
	return warn(msgLoginRequired), false
}

func (c *Controller) settle(action string, out envelope.Outcome, done string) Result {
	if out.OK() {
		c.log.Info("action succeeded", "action", action, "player_id", c.store.Identity())
		return success(done)
	}
	if isAuthFailure(out) {
		c.expire(action)
		return failure(msgSessionExpired, errtext.Generic(out))
	}
	c.log.Info("action rejected", "action", action, "kind", out.Kind.String(), "code", out.Code)
	return failure(errtext.Generic(out), "")
}

func (c *Controller) expire(action string) {
	c.log.Warn("backend rejected session", "action", action, "player_id", c.store.Identity())
	c.store.OnLogout()
	c.views.Drop(cache.Watchlist)
}

func isAuthFailure(out envelope.Outcome) bool {
	if out.Kind != envelope.KindProtocol {
		return false
	}
	if out.HasCode && out.Code == envelope.CodeNotAuthenticated {
		return true
	}
	return strings.Contains(strings.ToUpper(out.Message), "NOT_AUTHENTICATED")
}

func idsOf(snap cache.Snapshot, key string) []client.StockID {
	ids := make([]client.StockID, 0, len(snap))
	for _, rec := range snap {
		id := client.StockIDOf(rec[key])
		if id.Empty() {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

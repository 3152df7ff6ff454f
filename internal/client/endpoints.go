package client

import (
	"context"
	"net/url"
	"strconv"

	"skaladash/internal/envelope"
)

const (
	PathPlayers         = "/api/players"
	PathLogin           = "/api/players/login"
	PathPlayersList     = "/api/players/list"
	PathBuy             = "/api/players/buy"
	PathSell            = "/api/players/sell"
	PathStocksList      = "/api/stocks/list"
	PathStocks          = "/api/stocks"
	PathRanking         = "/api/ranking"
	PathWatchlist       = "/api/watchlist"
	PathWatchlistAdd    = "/api/watchlist/add"
	PathWatchlistRemove = "/api/watchlist/remove"
)

type SignupRequest struct {
	PlayerID       string  `json:"playerId"`
	PlayerPassword string  `json:"playerPassword"`
	PlayerMoney    float64 `json:"playerMoney"`
}

type LoginRequest struct {
	PlayerID       string `json:"playerId"`
	PlayerPassword string `json:"playerPassword"`
}

type OrderRequest struct {
	StockID  StockID `json:"stockId"`
	Quantity int     `json:"quantity"`
}

type WatchRequest struct {
	StockID StockID `json:"stockId"`
}

// Page selects a slice of a list endpoint. Zero fields fall back to the
// backend defaults.
type Page struct {
	Offset int
	Count  int
}

func (p Page) Path(path string) string {
	q := url.Values{}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
	if p.Count > 0 {
		q.Set("count", strconv.Itoa(p.Count))
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func (c *Client) Signup(ctx context.Context, playerID, password string, money float64) envelope.Outcome {
	return c.Post(ctx, PathPlayers, SignupRequest{
		PlayerID:       playerID,
		PlayerPassword: password,
		PlayerMoney:    money,
	})
}

func (c *Client) Login(ctx context.Context, playerID, password string) envelope.Outcome {
	return c.Post(ctx, PathLogin, LoginRequest{PlayerID: playerID, PlayerPassword: password})
}

func (c *Client) ListPlayers(ctx context.Context, page Page) envelope.Outcome {
	return c.Get(ctx, page.Path(PathPlayersList))
}

func (c *Client) PlayerDetail(ctx context.Context, playerID string) envelope.Outcome {
	return c.Get(ctx, PathPlayers+"/"+url.PathEscape(playerID))
}

func (c *Client) ListStocks(ctx context.Context, page Page) envelope.Outcome {
	return c.Get(ctx, page.Path(PathStocksList))
}

func (c *Client) StockDetail(ctx context.Context, id StockID) envelope.Outcome {
	return c.Get(ctx, PathStocks+"/"+url.PathEscape(id.String()))
}

func (c *Client) Ranking(ctx context.Context) envelope.Outcome {
	return c.Get(ctx, PathRanking)
}

func (c *Client) Watchlist(ctx context.Context) envelope.Outcome {
	return c.Get(ctx, PathWatchlist)
}

func (c *Client) Buy(ctx context.Context, id StockID, qty int) envelope.Outcome {
	return c.Post(ctx, PathBuy, OrderRequest{StockID: id, Quantity: qty})
}

func (c *Client) Sell(ctx context.Context, id StockID, qty int) envelope.Outcome {
	return c.Post(ctx, PathSell, OrderRequest{StockID: id, Quantity: qty})
}

func (c *Client) AddWatch(ctx context.Context, id StockID) envelope.Outcome {
	return c.Post(ctx, PathWatchlistAdd, WatchRequest{StockID: id})
}

func (c *Client) RemoveWatch(ctx context.Context, id StockID) envelope.Outcome {
	return c.Delete(ctx, PathWatchlistRemove, WatchRequest{StockID: id})
}

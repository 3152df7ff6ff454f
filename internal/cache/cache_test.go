package cache

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skaladash/internal/client"
	"skaladash/internal/envelope"
)

type fakeGetter struct {
	paths     []string
	responses map[string]envelope.Outcome
}

func (f *fakeGetter) Get(_ context.Context, path string) envelope.Outcome {
	f.paths = append(f.paths, path)
	out, ok := f.responses[path]
	if !ok {
		return envelope.TransportFailure("")
	}
	return out
}

func ok(body string) envelope.Outcome {
	return envelope.Success(json.RawMessage(body))
}

func TestRefreshReplacesSnapshot(t *testing.T) {
	api := &fakeGetter{responses: map[string]envelope.Outcome{
		client.PathStocksList: ok(`{"total":2,"count":2,"offset":0,"list":[{"id":1,"stockName":"SKALA","stockPrice":1000.5},{"id":2,"stockName":"AAPL","stockPrice":200}]}`),
		client.PathRanking:    ok(`[{"rank":1,"playerId":"alice","profitRate":0.1,"totalAssets":110000}]`),
		client.PathWatchlist:  ok(`[{"id":5,"stockId":2,"stockName":"AAPL","stockPrice":200}]`),
	}}
	c := New(api, client.Page{})
	ctx := context.Background()

	n, out := c.Refresh(ctx, Stocks)
	require.True(t, out.OK())
	assert.Equal(t, 2, n)
	stocks := c.Get(Stocks)
	require.Len(t, stocks, 2)
	assert.Equal(t, "SKALA", stocks[0]["stockName"])
	assert.Equal(t, json.Number("1"), stocks[0]["id"])

	n, out = c.Refresh(ctx, Ranking)
	require.True(t, out.OK())
	assert.Equal(t, 1, n)
	assert.Equal(t, "alice", c.Get(Ranking)[0]["playerId"])

	n, out = c.Refresh(ctx, Watchlist)
	require.True(t, out.OK())
	assert.Equal(t, 1, n)

	// A shorter list replaces, it does not merge.
	api.responses[client.PathStocksList] = ok(`{"list":[{"id":3,"stockName":"NEW"}]}`)
	n, out = c.Refresh(ctx, Stocks)
	require.True(t, out.OK())
	assert.Equal(t, 1, n)
	assert.Equal(t, Snapshot{{"id": json.Number("3"), "stockName": "NEW"}}, c.Get(Stocks))
}

func TestRefreshFailureKeepsPrevious(t *testing.T) {
	api := &fakeGetter{responses: map[string]envelope.Outcome{
		client.PathRanking: ok(`[{"rank":1,"playerId":"alice"}]`),
	}}
	c := New(api, client.Page{})
	ctx := context.Background()
	_, out := c.Refresh(ctx, Ranking)
	require.True(t, out.OK())
	before := c.Get(Ranking)

	api.responses[client.PathRanking] = envelope.Failure(envelope.CodeSystemError, "boom")
	n, out := c.Refresh(ctx, Ranking)
	assert.Zero(t, n)
	assert.Equal(t, envelope.CodeSystemError, out.Code)
	assert.Equal(t, before, c.Get(Ranking))

	api.responses[client.PathRanking] = ok(`{"not":"a list"}`)
	_, out = c.Refresh(ctx, Ranking)
	assert.Equal(t, envelope.KindTransport, out.Kind)
	assert.Equal(t, before, c.Get(Ranking))

	delete(api.responses, client.PathRanking)
	_, out = c.Refresh(ctx, Ranking)
	assert.False(t, out.OK())
	assert.Equal(t, before, c.Get(Ranking))
}

func TestPlayersAreRedactedOnLoad(t *testing.T) {
	api := &fakeGetter{responses: map[string]envelope.Outcome{
		client.PathPlayersList: ok(`{"list":[
			{"playerId":"alice","playerPassword":"pw1","playerMoney":100000},
			{"playerId":"bob","password":"pw2","meta":{"Secret":"x","note":"keep"},"history":[{"passwd":"old"}]}
		]}`),
	}}
	c := New(api, client.Page{})
	n, out := c.Refresh(context.Background(), Players)
	require.True(t, out.OK())
	require.Equal(t, 2, n)

	players := c.Get(Players)
	for _, rec := range players {
		assert.NotContains(t, rec, "playerPassword")
		assert.NotContains(t, rec, "password")
	}
	assert.Equal(t, "alice", players[0]["playerId"])
	assert.Equal(t, map[string]any{"note": "keep"}, players[1]["meta"])
	assert.Equal(t, []any{map[string]any{}}, players[1]["history"])
}

func TestSetRedactsPlayersAndCopies(t *testing.T) {
	c := New(&fakeGetter{}, client.Page{})
	in := Snapshot{{"playerId": "alice", "playerPassword": "pw"}}
	c.Set(Players, in)

	assert.Equal(t, "pw", in[0]["playerPassword"], "caller's snapshot is not modified")
	got := c.Get(Players)
	assert.Equal(t, Snapshot{{"playerId": "alice"}}, got)

	got[0]["playerId"] = "mallory"
	assert.Equal(t, "alice", c.Get(Players)[0]["playerId"], "Get hands out copies")

	c.Set(Stocks, Snapshot{{"stockPassword": "not a player record"}})
	assert.Contains(t, c.Get(Stocks)[0], "stockPassword")
}

func TestPagingAndEmptyBodies(t *testing.T) {
	api := &fakeGetter{responses: map[string]envelope.Outcome{
		"/api/players/list?count=25": ok(`{"list":null}`),
		client.PathWatchlist:         envelope.Success(nil),
	}}
	c := New(api, client.Page{Count: 25})
	assert.False(t, c.Loaded(Players))

	n, out := c.Refresh(context.Background(), Players)
	require.True(t, out.OK())
	assert.Zero(t, n)
	assert.True(t, c.Loaded(Players))
	assert.Equal(t, Snapshot{}, c.Get(Players))

	n, out = c.Refresh(context.Background(), Watchlist)
	require.True(t, out.OK())
	assert.Zero(t, n)

	c.Drop(Watchlist)
	assert.False(t, c.Loaded(Watchlist))
	assert.Nil(t, c.Get(Watchlist))
}

func TestScalarItemsBecomeValueColumn(t *testing.T) {
	api := &fakeGetter{responses: map[string]envelope.Outcome{
		client.PathRanking: ok(`["alice", 3]`),
	}}
	c := New(api, client.Page{})
	_, out := c.Refresh(context.Background(), Ranking)
	require.True(t, out.OK())
	assert.Equal(t, Snapshot{{"value": "alice"}, {"value": json.Number("3")}}, c.Get(Ranking))
}

func TestIsCredentialKey(t *testing.T) {
	for _, k := range []string{"playerPassword", "password", "PASSWD", "clientSecret", "credentials"} {
		assert.True(t, IsCredentialKey(k), k)
	}
	for _, k := range []string{"playerId", "playerMoney", "pass"} {
		assert.False(t, IsCredentialKey(k), k)
	}
}

func TestColumnsAndFormat(t *testing.T) {
	snap := Snapshot{
		{"stockName": "SKALA", "id": json.Number("1"), "zeta": true},
		{"id": json.Number("2"), "stockPrice": json.Number("1234567.5"), "alpha": nil},
	}
	cols := Columns(Stocks, snap)
	assert.Equal(t, []string{"id", "stockName", "stockPrice", "alpha", "zeta"}, cols)
	assert.Equal(t, []string{"2", "", "1,234,567.50", "", ""}, Row(snap[1], cols))

	big := Snapshot{{"id": json.Number("1234"), "stockName": "X", "stockPrice": json.Number("1234")}}
	assert.Equal(t, []string{"1234", "X", "1,234"}, Row(big[0], Columns(Stocks, big)))
	ranked := Record{"rank": json.Number("1000"), "playerId": "alice", "totalAssets": 1234567.0}
	assert.Equal(t, []string{"1000", "alice", "1,234,567"}, Row(ranked, []string{"rank", "playerId", "totalAssets"}))
	watched := Record{"stockId": float64(5678)}
	assert.Equal(t, []string{"5678"}, Row(watched, []string{"stockId"}))

	assert.Equal(t, "2048", Cell("id", json.Number("2048")))
	assert.Equal(t, "2,048", Cell("stockPrice", json.Number("2048")))

	assert.Equal(t, "100,000", Format(json.Number("100000")))
	assert.Equal(t, "-1,000", Format(json.Number("-1000")))
	assert.Equal(t, "0.12", Format(json.Number("0.1234")))
	assert.Equal(t, "-0.50", Format(-0.5))
	assert.Equal(t, "999", Format(999))
	assert.Equal(t, `{"a":1}`, Format(map[string]any{"a": 1}))
	assert.Empty(t, Columns(Ranking, nil))
}

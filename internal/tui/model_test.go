package tui

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/dashboard"
	"skaladash/internal/session"
)

type fakeActions struct {
	sess   session.Session
	snaps  map[cache.Kind]cache.Snapshot
	calls  []string
	result dashboard.Result
}

func newFakeActions() *fakeActions {
	return &fakeActions{
		snaps:  map[cache.Kind]cache.Snapshot{},
		result: dashboard.Result{OK: true, Level: dashboard.LevelSuccess, Message: "ok"},
	}
}

func (f *fakeActions) record(call string) dashboard.Result {
	f.calls = append(f.calls, call)
	return f.result
}

func (f *fakeActions) Session() session.Session { return f.sess }

func (f *fakeActions) Gate(action string) (dashboard.Result, bool) {
	if f.sess.Authenticated {
		return dashboard.Result{}, true
	}
	return dashboard.Result{Level: dashboard.LevelWarn, Message: "login first"}, false
}

func (f *fakeActions) Signup(_ context.Context, id, pw string, money float64) dashboard.Result {
	return f.record("signup " + id + " " + pw + " " + cache.Format(money))
}

func (f *fakeActions) Login(_ context.Context, id, pw string) dashboard.Result {
	return f.record("login " + id + " " + pw)
}

func (f *fakeActions) Logout() dashboard.Result { return f.record("logout") }

func (f *fakeActions) Buy(_ context.Context, id client.StockID, qty int) dashboard.Result {
	return f.record("buy " + id.String() + " " + cache.Format(qty))
}

func (f *fakeActions) Sell(_ context.Context, id client.StockID, qty int) dashboard.Result {
	return f.record("sell " + id.String() + " " + cache.Format(qty))
}

func (f *fakeActions) Watch(_ context.Context, id client.StockID) dashboard.Result {
	return f.record("watch " + id.String())
}

func (f *fakeActions) Unwatch(_ context.Context, id client.StockID) dashboard.Result {
	return f.record("unwatch " + id.String())
}

func (f *fakeActions) Refresh(_ context.Context, kind cache.Kind) dashboard.Result {
	return f.record("refresh " + kind.String())
}

func (f *fakeActions) Snapshot(kind cache.Kind) cache.Snapshot { return f.snaps[kind] }

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// drain runs cmd and any batched commands, feeding every resultMsg back
// into the model.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, m, c)
		}
	case resultMsg:
		m.Update(msg)
	}
}

func TestInitLoadsPublicViews(t *testing.T) {
	fa := newFakeActions()
	m := New(context.Background(), fa)
	drain(t, m, m.Init())
	assert.Equal(t, []string{"refresh ranking", "refresh players", "refresh stocks"}, fa.calls)
	assert.False(t, m.busy)

	fa.calls = nil
	fa.sess = session.Session{Identity: "alice", Authenticated: true}
	drain(t, m, m.run(m.loadAll))
	assert.Equal(t, []string{"refresh ranking", "refresh players", "refresh stocks", "refresh watchlist"}, fa.calls)
}

func TestTabsAndRefresh(t *testing.T) {
	fa := newFakeActions()
	m := New(context.Background(), fa)

	m.Update(keyPress("3"))
	assert.Equal(t, cache.Stocks, m.kind())
	_, cmd := m.Update(keyPress("r"))
	drain(t, m, cmd)
	assert.Equal(t, []string{"refresh stocks"}, fa.calls)

	m.Update(keyPress("tab"))
	assert.Equal(t, cache.Watchlist, m.kind())
	_, cmd = m.Update(keyPress("r"))
	assert.Nil(t, cmd, "anonymous watchlist is not requested")
	assert.Equal(t, msgWatchAnon, m.status.Message)

	m.Update(keyPress("tab"))
	assert.Equal(t, cache.Ranking, m.kind())
}

func TestOneRequestAtATime(t *testing.T) {
	fa := newFakeActions()
	m := New(context.Background(), fa)
	_, first := m.Update(keyPress("r"))
	require.NotNil(t, first)
	_, second := m.Update(keyPress("r"))
	assert.Nil(t, second)
	assert.Equal(t, msgBusy, m.status.Message)

	drain(t, m, first)
	assert.Equal(t, []string{"refresh ranking"}, fa.calls)
	assert.False(t, m.busy)
}

func TestLoginForm(t *testing.T) {
	fa := newFakeActions()
	m := New(context.Background(), fa)

	m.Update(keyPress("l"))
	require.NotNil(t, m.form)
	typeText(m, "alice")
	m.Update(keyPress("enter"))
	typeText(m, "pw1")
	_, cmd := m.Update(keyPress("enter"))
	assert.Nil(t, m.form)
	drain(t, m, cmd)
	assert.Equal(t, []string{"login alice pw1"}, fa.calls)
	assert.Equal(t, "ok", m.status.Message)

	m.Update(keyPress("s"))
	m.Update(keyPress("esc"))
	assert.Nil(t, m.form)
	assert.Len(t, fa.calls, 1)
}

func TestTradeNeedsLoginAndSelection(t *testing.T) {
	fa := newFakeActions()
	fa.snaps[cache.Stocks] = cache.Snapshot{{"id": json.Number("1")}, {"id": json.Number("2")}}
	fa.snaps[cache.Watchlist] = cache.Snapshot{{"id": json.Number("9"), "stockId": json.Number("2")}}
	m := New(context.Background(), fa)

	m.Update(keyPress("3"))
	m.Update(keyPress("b"))
	assert.Nil(t, m.form)
	assert.Equal(t, "login first", m.status.Message)

	fa.sess = session.Session{Identity: "alice", Authenticated: true}
	m.Update(keyPress("1"))
	m.Update(keyPress("b"))
	assert.Nil(t, m.form)
	assert.Equal(t, msgPickStock, m.status.Message)

	m.Update(keyPress("3"))
	m.Update(keyPress("down"))
	m.Update(keyPress("x"))
	require.NotNil(t, m.form)
	assert.Equal(t, client.StockID("2"), m.form.stock)
	m.form.fields[0].input.SetValue("4")
	_, cmd := m.Update(keyPress("enter"))
	drain(t, m, cmd)
	assert.Equal(t, []string{"sell 2 4"}, fa.calls)

	m.Update(keyPress("d"))
	assert.Equal(t, msgPickWatchlist, m.status.Message)
	m.Update(keyPress("4"))
	_, cmd = m.Update(keyPress("d"))
	drain(t, m, cmd)
	_, cmd = m.Update(keyPress("w"))
	drain(t, m, cmd)
	assert.Equal(t, []string{"sell 2 4", "unwatch 2", "watch 2"}, fa.calls)
}

func TestViewRendersRows(t *testing.T) {
	fa := newFakeActions()
	fa.snaps[cache.Ranking] = cache.Snapshot{{"rank": json.Number("1"), "playerId": "alice", "totalAssets": json.Number("100000")}}
	m := New(context.Background(), fa)
	out := m.View()
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "100,000")
	assert.Contains(t, out, "로그인 필요")

	m.Update(keyPress("2"))
	assert.Contains(t, m.View(), msgEmpty)
}

func TestVisibleRange(t *testing.T) {
	cases := []struct {
		total, cursor, limit int
		start, end           int
	}{
		{5, 0, 10, 0, 5},
		{20, 0, 5, 0, 5},
		{20, 7, 5, 3, 8},
		{20, 19, 5, 15, 20},
		{3, 2, 0, 0, 3},
	}
	for _, tc := range cases {
		start, end := visibleRange(tc.total, tc.cursor, tc.limit)
		assert.Equal(t, tc.start, start)
		assert.Equal(t, tc.end, end)
	}
	assert.True(t, strings.Contains(renderTable(cache.Stocks, cache.Snapshot{{"id": "A"}}, 0, 5), "A"))
}

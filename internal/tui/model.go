// Package tui is the full-screen dashboard shell. It only renders views and
// forwards keys; every decision about sessions and data belongs to the
// controller behind Actions.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/dashboard"
	"skaladash/internal/session"
)

const (
	msgBusy          = "요청 처리 중입니다..."
	msgLoaded        = "데이터를 불러왔습니다."
	msgEmpty         = "데이터가 없습니다."
	msgWatchAnon     = "로그인 후 확인 가능합니다."
	msgPickStock     = "종목 또는 관심종목 탭에서 종목을 선택해 주세요."
	msgPickWatchlist = "관심종목 탭에서 삭제할 종목을 선택해 주세요."
)

// Actions is what the dashboard needs from the controller.
type Actions interface {
	Session() session.Session
	Gate(action string) (dashboard.Result, bool)
	Signup(ctx context.Context, playerID, password string, money float64) dashboard.Result
	Login(ctx context.Context, playerID, password string) dashboard.Result
	Logout() dashboard.Result
	Buy(ctx context.Context, id client.StockID, qty int) dashboard.Result
	Sell(ctx context.Context, id client.StockID, qty int) dashboard.Result
	Watch(ctx context.Context, id client.StockID) dashboard.Result
	Unwatch(ctx context.Context, id client.StockID) dashboard.Result
	Refresh(ctx context.Context, kind cache.Kind) dashboard.Result
	Snapshot(kind cache.Kind) cache.Snapshot
}

type resultMsg struct {
	result dashboard.Result
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx     context.Context
	actions Actions
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	tab    int
	cursor map[cache.Kind]int
	form   *form
	busy   bool
	status dashboard.Result

	width  int
	height int
}

func New(ctx context.Context, actions Actions) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)
	return &Model{
		ctx:     ctx,
		actions: actions,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		cursor:  map[cache.Kind]int{},
		status:  dashboard.Result{Level: dashboard.LevelInfo, Message: "r 새로고침 · l 로그인 · s 회원가입"},
	}
}

func (m *Model) Init() tea.Cmd {
	return m.run(m.loadAll)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case resultMsg:
		m.busy = false
		m.status = msg.result
		m.clampCursors()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.form != nil {
			return m, m.updateForm(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Tabs):
		m.tab, _ = strconv.Atoi(msg.String())
		m.tab--
	case key.Matches(msg, m.keys.NextTab):
		m.tab = (m.tab + 1) % len(cache.Kinds)
	case key.Matches(msg, m.keys.PrevTab):
		m.tab = (m.tab + len(cache.Kinds) - 1) % len(cache.Kinds)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshTab()
	case key.Matches(msg, m.keys.Login):
		return m.openForm(newLoginForm())
	case key.Matches(msg, m.keys.Signup):
		return m.openForm(newSignupForm())
	case key.Matches(msg, m.keys.Logout):
		if m.busy {
			m.status = busyResult()
			return nil
		}
		m.status = m.actions.Logout()
	case key.Matches(msg, m.keys.Buy):
		return m.openTrade(formBuy)
	case key.Matches(msg, m.keys.Sell):
		return m.openTrade(formSell)
	case key.Matches(msg, m.keys.Watch):
		id := m.selectedStock()
		if id.Empty() {
			m.status = dashboard.Result{Level: dashboard.LevelWarn, Message: msgPickStock}
			return nil
		}
		return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Watch(ctx, id) })
	case key.Matches(msg, m.keys.Unwatch):
		if m.kind() != cache.Watchlist {
			m.status = dashboard.Result{Level: dashboard.LevelWarn, Message: msgPickWatchlist}
			return nil
		}
		id := m.selectedStock()
		if id.Empty() {
			m.status = dashboard.Result{Level: dashboard.LevelWarn, Message: msgPickWatchlist}
			return nil
		}
		return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Unwatch(ctx, id) })
	}
	return nil
}

func (m *Model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.form = nil
		return nil
	case "tab", "down":
		return m.form.move(1)
	case "shift+tab", "up":
		return m.form.move(-1)
	case "enter":
		if !m.form.last() {
			return m.form.move(1)
		}
		f := m.form
		m.form = nil
		return m.submit(f)
	}
	return m.form.update(msg)
}

func (m *Model) submit(f *form) tea.Cmd {
	v := f.values()
	switch f.kind {
	case formLogin:
		return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Login(ctx, v[0], v[1]) })
	case formSignup:
		money, err := strconv.ParseFloat(strings.TrimSpace(v[2]), 64)
		if err != nil {
			money = -1
		}
		return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Signup(ctx, v[0], v[1], money) })
	case formBuy, formSell:
		// Unparseable quantities fall through as 0 for the controller to reject.
		qty, _ := strconv.Atoi(strings.TrimSpace(v[0]))
		if f.kind == formSell {
			return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Sell(ctx, f.stock, qty) })
		}
		return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Buy(ctx, f.stock, qty) })
	}
	return nil
}

func (m *Model) openForm(f *form) tea.Cmd {
	if m.busy {
		m.status = busyResult()
		return nil
	}
	m.form = f
	return f.start()
}

func (m *Model) openTrade(kind formKind) tea.Cmd {
	action := "buy"
	if kind == formSell {
		action = "sell"
	}
	if r, ok := m.actions.Gate(action); !ok {
		m.status = r
		return nil
	}
	id := m.selectedStock()
	if id.Empty() {
		m.status = dashboard.Result{Level: dashboard.LevelWarn, Message: msgPickStock}
		return nil
	}
	return m.openForm(newTradeForm(kind, id))
}

// run starts one request in the background. Only one may be in flight.
func (m *Model) run(fn func(ctx context.Context) dashboard.Result) tea.Cmd {
	if m.busy {
		m.status = busyResult()
		return nil
	}
	m.busy = true
	ctx := m.ctx
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return resultMsg{result: fn(ctx)}
	})
}

func (m *Model) refreshTab() tea.Cmd {
	kind := m.kind()
	if kind == cache.Watchlist && !m.actions.Session().Authenticated {
		m.status = dashboard.Result{Level: dashboard.LevelInfo, Message: msgWatchAnon}
		return nil
	}
	return m.run(func(ctx context.Context) dashboard.Result { return m.actions.Refresh(ctx, kind) })
}

// loadAll fills every view the current session can see and reports the
// first failure.
func (m *Model) loadAll(ctx context.Context) dashboard.Result {
	authed := m.actions.Session().Authenticated
	for _, kind := range cache.Kinds {
		if kind == cache.Watchlist && !authed {
			continue
		}
		if r := m.actions.Refresh(ctx, kind); !r.OK {
			return r
		}
	}
	return dashboard.Result{OK: true, Level: dashboard.LevelInfo, Message: msgLoaded}
}

func (m *Model) kind() cache.Kind {
	return cache.Kinds[m.tab]
}

// selectedStock is the stock under the cursor on the stocks or watchlist tab.
func (m *Model) selectedStock() client.StockID {
	kind := m.kind()
	field := "id"
	switch kind {
	case cache.Stocks:
	case cache.Watchlist:
		field = "stockId"
	default:
		return ""
	}
	snap := m.actions.Snapshot(kind)
	i := m.cursor[kind]
	if i < 0 || i >= len(snap) {
		return ""
	}
	return client.StockIDOf(snap[i][field])
}

func (m *Model) moveCursor(delta int) {
	kind := m.kind()
	n := len(m.actions.Snapshot(kind))
	if n == 0 {
		m.cursor[kind] = 0
		return
	}
	m.cursor[kind] = min(max(m.cursor[kind]+delta, 0), n-1)
}

func (m *Model) clampCursors() {
	for _, kind := range cache.Kinds {
		n := len(m.actions.Snapshot(kind))
		m.cursor[kind] = min(m.cursor[kind], max(n-1, 0))
	}
}

func busyResult() dashboard.Result {
	return dashboard.Result{Level: dashboard.LevelWarn, Message: msgBusy}
}

func (m *Model) View() string {
	sections := []string{m.headerView(), m.tabsView(), m.tableView()}
	if m.form != nil {
		sections = append(sections, m.form.view())
	}
	sections = append(sections, m.statusView(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView() string {
	s := m.actions.Session()
	who := anonymousStyle.Render("로그인 필요")
	if s.Authenticated {
		who = sessionStyle.Render(fmt.Sprintf("%s 로그인됨", s.Identity))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, titleStyle.Render("SKALA Stock Dashboard"), " ", who)
}

var tabTitles = map[cache.Kind]string{
	cache.Ranking:   "랭킹",
	cache.Players:   "플레이어",
	cache.Stocks:    "종목",
	cache.Watchlist: "관심종목",
}

func (m *Model) tabsView() string {
	tabs := make([]string, len(cache.Kinds))
	for i, kind := range cache.Kinds {
		label := fmt.Sprintf("%d %s", i+1, tabTitles[kind])
		if i == m.tab {
			tabs[i] = activeTabStyle.Render(label)
		} else {
			tabs[i] = tabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) tableView() string {
	kind := m.kind()
	if kind == cache.Watchlist && !m.actions.Session().Authenticated {
		return mutedStyle.Render(msgWatchAnon)
	}
	return renderTable(kind, m.actions.Snapshot(kind), m.cursor[kind], m.maxRows())
}

func (m *Model) maxRows() int {
	// header, tabs, table borders and header, status, help
	const chrome = 9
	if m.height <= chrome {
		return 10
	}
	return m.height - chrome
}

func (m *Model) statusView() string {
	text := statusStyle(m.status.Level).Render(m.status.Message)
	if m.status.Detail != "" {
		text += " " + mutedStyle.Render(m.status.Detail)
	}
	if m.busy {
		text = m.spinner.View() + " " + text
	}
	return text
}

// visibleRange picks the window of rows to draw so the cursor stays on
// screen.
func visibleRange(total, cursor, limit int) (int, int) {
	if limit <= 0 || total <= limit {
		return 0, total
	}
	start := max(cursor-limit+1, 0)
	return start, start + limit
}

func renderTable(kind cache.Kind, snap cache.Snapshot, cursor, limit int) string {
	if len(snap) == 0 {
		return mutedStyle.Render(msgEmpty)
	}
	cols := cache.Columns(kind, snap)
	start, end := visibleRange(len(snap), cursor, limit)
	rows := make([][]string, 0, end-start)
	for _, rec := range snap[start:end] {
		rows = append(rows, cache.Row(rec, cols))
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderColor)).
		Headers(cols...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case start+row == cursor:
				return selectedStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

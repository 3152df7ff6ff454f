package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skaladash/internal/client"
)

type formKind int

const (
	formLogin formKind = iota
	formSignup
	formBuy
	formSell
)

type field struct {
	label string
	input textinput.Model
}

// form collects the inputs for one action. Enter on the last field submits.
type form struct {
	kind   formKind
	title  string
	stock  client.StockID
	fields []field
	focus  int
}

func newField(label, placeholder string, secret bool) field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = 24
	in.CharLimit = 64
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return field{label: label, input: in}
}

func newLoginForm() *form {
	return &form{
		kind:  formLogin,
		title: "로그인",
		fields: []field{
			newField("Player ID", "", false),
			newField("Password", "", true),
		},
	}
}

func newSignupForm() *form {
	money := newField("초기 자산", "100000", false)
	money.input.SetValue("100000")
	return &form{
		kind:  formSignup,
		title: "회원가입",
		fields: []field{
			newField("Player ID", "", false),
			newField("Password", "", true),
			money,
		},
	}
}

func newTradeForm(kind formKind, stock client.StockID) *form {
	title := "매수"
	if kind == formSell {
		title = "매도"
	}
	qty := newField("수량", "1", false)
	qty.input.SetValue("1")
	return &form{
		kind:   kind,
		title:  title + " · " + stock.String(),
		stock:  stock,
		fields: []field{qty},
	}
}

func (f *form) start() tea.Cmd {
	f.focus = 0
	return f.fields[0].input.Focus()
}

func (f *form) move(delta int) tea.Cmd {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *form) last() bool {
	return f.focus == len(f.fields)-1
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) values() []string {
	out := make([]string, len(f.fields))
	for i, fl := range f.fields {
		out[i] = fl.input.Value()
	}
	return out
}

func (f *form) view() string {
	lines := []string{titleStyle.Render(f.title)}
	for _, fl := range f.fields {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(fl.label), fl.input.View()))
	}
	lines = append(lines, mutedStyle.Render(strings.Join([]string{"enter 다음/확인", "tab 이동", "esc 취소"}, " · ")))
	return formStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

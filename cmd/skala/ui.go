package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"skaladash/internal/cache"
	"skaladash/internal/dashboard"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const maxCellWidth = 24

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
	muted   = color.New(color.FgHiBlack)
)

// console is the prompt side of the shell: it reads answers from in and
// writes everything to out.
type console struct {
	in  *bufio.Reader
	out io.Writer
	// secret reads a password without echo; nil falls back to a plain line.
	secret func() (string, error)
}

func newConsole(in io.Reader, out io.Writer) *console {
	c := &console{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		c.secret = func() (string, error) {
			raw, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			return string(raw), err
		}
	}
	return c
}

func (c *console) printSuccess(msg string) {
	success.Fprintln(c.out, msg)
}

func (c *console) printWarn(msg string) {
	warn.Fprintln(c.out, msg)
}

func (c *console) printError(msg string) {
	danger.Fprintln(c.out, msg)
}

func (c *console) printInfo(msg string) {
	neutral.Fprintln(c.out, msg)
}

func (c *console) printResult(r dashboard.Result) {
	switch r.Level {
	case dashboard.LevelSuccess:
		c.printSuccess(r.Message)
	case dashboard.LevelWarn:
		c.printWarn(r.Message)
	case dashboard.LevelError:
		c.printError(r.Message)
	default:
		c.printInfo(r.Message)
	}
	if r.Detail != "" {
		muted.Fprintln(c.out, "  "+r.Detail)
	}
}

func (c *console) readLine() (string, error) {
	text, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *console) promptRequired(label string) (string, error) {
	for {
		fmt.Fprintf(c.out, "%s: ", label)
		text, err := c.readLine()
		if err != nil {
			return "", err
		}
		if text != "" {
			return text, nil
		}
		c.printWarn(label + " 항목은 필수입니다.")
	}
}

func (c *console) promptSecret(label string) (string, error) {
	if c.secret == nil {
		return c.promptRequired(label)
	}
	for {
		fmt.Fprintf(c.out, "%s: ", label)
		text, err := c.secret()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(text) != "" {
			return text, nil
		}
		c.printWarn(label + " 항목은 필수입니다.")
	}
}

func (c *console) promptFloat(label string, def float64) (float64, error) {
	for {
		fmt.Fprintf(c.out, "%s [%s]: ", label, cache.Format(def))
		text, err := c.readLine()
		if err != nil {
			return 0, err
		}
		if text == "" {
			return def, nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
		if err != nil {
			c.printWarn("숫자를 입력해 주세요.")
			continue
		}
		return v, nil
	}
}

func (c *console) promptInt(label string, def int) (int, error) {
	for {
		fmt.Fprintf(c.out, "%s [%d]: ", label, def)
		text, err := c.readLine()
		if err != nil {
			return 0, err
		}
		if text == "" {
			return def, nil
		}
		v, err := strconv.Atoi(text)
		if err != nil {
			c.printWarn("정수를 입력해 주세요.")
			continue
		}
		return v, nil
	}
}

func (c *console) renderSnapshot(title string, kind cache.Kind, snap cache.Snapshot) {
	accent.Fprintf(c.out, "\n== %s ==\n", title)
	if len(snap) == 0 {
		c.printInfo("데이터가 없습니다.")
		return
	}
	cols := cache.Columns(kind, snap)
	rows := make([][]string, 0, len(snap))
	for _, rec := range snap {
		rows = append(rows, cache.Row(rec, cols))
	}
	c.renderTable(cols, rows)
	fmt.Fprintln(c.out)
}

func (c *console) renderTable(cols []string, rows [][]string) {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = min(runewidth.StringWidth(col), maxCellWidth)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}
	line := func(cells []string) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			out[i] = runewidth.FillRight(truncate(cell, widths[i]), widths[i])
		}
		return strings.TrimRight(strings.Join(out, "  "), " ")
	}
	accent.Fprintln(c.out, line(cols))
	for _, row := range rows {
		fmt.Fprintln(c.out, line(row))
	}
}

// renderRecord prints scalar fields as "key: value" and list fields as
// tables underneath.
func (c *console) renderRecord(title string, rec cache.Record) {
	accent.Fprintf(c.out, "\n== %s ==\n", title)
	keys := make([]string, 0, len(rec))
	var lists []string
	for k, v := range rec {
		if _, ok := v.([]any); ok {
			lists = append(lists, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sort.Strings(lists)
	for _, k := range keys {
		fmt.Fprintf(c.out, "%-14s %s\n", k+":", cache.Cell(k, rec[k]))
	}
	for _, k := range lists {
		items := rec[k].([]any)
		snap := make(cache.Snapshot, 0, len(items))
		for _, item := range items {
			if m, ok := item.(map[string]any); ok {
				snap = append(snap, cache.Record(m))
			} else {
				snap = append(snap, cache.Record{"value": item})
			}
		}
		c.renderSnapshot(k, cache.Watchlist, snap)
	}
	fmt.Fprintln(c.out)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || runewidth.StringWidth(s) <= n {
		return s
	}
	if n <= 3 {
		return runewidth.Truncate(s, n, "")
	}
	return runewidth.Truncate(s, n, "...")
}

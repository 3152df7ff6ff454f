package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var preferredColumns = map[Kind][]string{
	Ranking:   {"rank", "playerId", "profitRate", "totalAssets"},
	Players:   {"playerId", "playerMoney", "initialMoney"},
	Stocks:    {"id", "stockName", "stockPrice"},
	Watchlist: {"stockId", "stockName", "stockPrice", "id"},
}

// rawColumns hold identifiers. They are shown as the backend sent them so
// an id read off a table can be typed back in.
var rawColumns = map[string]bool{
	"id":       true,
	"stockId":  true,
	"playerId": true,
	"rank":     true,
}

// Columns lists the keys present in snap: the usual ones for kind first, in
// their usual order, then any others alphabetically.
func Columns(kind Kind, snap Snapshot) []string {
	present := map[string]bool{}
	for _, rec := range snap {
		for k := range rec {
			present[k] = true
		}
	}
	cols := make([]string, 0, len(present))
	for _, k := range preferredColumns[kind] {
		if present[k] {
			cols = append(cols, k)
			delete(present, k)
		}
	}
	rest := make([]string, 0, len(present))
	for k := range present {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(cols, rest...)
}

// Row renders rec's values in column order. Identifier columns are left
// unformatted.
func Row(rec Record, cols []string) []string {
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = Cell(c, rec[c])
	}
	return row
}

// Cell renders the value of field key: identifiers as sent, anything else
// through Format.
func Cell(key string, v any) string {
	if rawColumns[key] {
		return raw(v)
	}
	return Format(v)
}

func raw(v any) string {
	switch t := v.(type) {
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return Format(v)
	}
}

// Format renders a decoded JSON value for a table cell. Whole numbers get
// thousands separators, fractions two decimals.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return comma(n)
		}
		if f, err := t.Float64(); err == nil {
			return formatFloat(f)
		}
		return t.String()
	case float64:
		if t == float64(int64(t)) {
			return comma(int64(t))
		}
		return formatFloat(t)
	case int:
		return comma(int64(t))
	case int64:
		return comma(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(raw)
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return s
	}
	out := comma(n)
	if n == 0 && strings.HasPrefix(whole, "-") {
		out = "-0"
	}
	return out + "." + frac
}

func comma(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StockID identifies a stock. The backend keys stocks by number, but the
// dashboard treats ids as opaque text; all-digit ids go on the wire as
// numbers, anything else as a string.
type StockID string

func (id StockID) String() string {
	return strings.TrimSpace(string(id))
}

func (id StockID) Empty() bool {
	return id.String() == ""
}

func (id StockID) numeric() bool {
	s := id.String()
	if s == "" {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == s
}

func (id StockID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id.String()), nil
	}
	return json.Marshal(id.String())
}

func (id *StockID) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		*id = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*id = StockID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("stock id: %w", err)
	}
	*id = StockID(n.String())
	return nil
}

// StockIDOf reads an id out of a decoded JSON value (float64, json.Number or
// string). Other kinds yield an empty id.
func StockIDOf(v any) StockID {
	switch t := v.(type) {
	case string:
		return StockID(strings.TrimSpace(t))
	case json.Number:
		return StockID(t.String())
	case float64:
		if t == float64(int64(t)) {
			return StockID(strconv.FormatInt(int64(t), 10))
		}
		return StockID(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return StockID(strconv.Itoa(t))
	case int64:
		return StockID(strconv.FormatInt(t, 10))
	default:
		return ""
	}
}

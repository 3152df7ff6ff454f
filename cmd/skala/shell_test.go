package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/config"
	"skaladash/internal/dashboard"
	"skaladash/internal/mockapi"
	"skaladash/internal/session"
)

func runScript(t *testing.T, script string) string {
	t.Helper()
	color.NoColor = true

	srv := mockapi.New(config.MockConfig{}, slog.New(slog.DiscardHandler), nil)
	srv.Backend().SeedDefaults()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	store := session.New()
	api := client.NewClient(ts.URL, store)
	ctl := dashboard.New(api, store, cache.New(api, client.Page{}), nil, nil)

	var out bytes.Buffer
	sh := &shell{ctl: ctl, console: newConsole(strings.NewReader(script), &out)}
	require.NoError(t, sh.loop(context.Background()))
	return out.String()
}

func TestShellSession(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"buy 1 1",
		"signup alice",
		"pw1",
		"",
		"login alice",
		"wrong",
		"login alice",
		"pw1",
		"whoami",
		"stocks",
		"buy 1 3",
		"watch 2",
		"watchlist",
		"player alice",
		"unwatch 5",
		"logout",
		"watchlist",
		"frobnicate",
		"quit",
		"stocks",
	}, "\n"))

	assert.Contains(t, out, "로그인 후 거래/관심종목 기능 사용 가능")
	assert.Contains(t, out, "가입이 완료되었습니다.")
	assert.Contains(t, out, "비밀번호가 일치하지 않습니다.")
	assert.Contains(t, out, "alice님 환영합니다!")
	assert.Contains(t, out, "alice (cookie=true)")
	assert.Contains(t, out, "8개 로드")
	assert.Contains(t, out, "SK Hynix")
	assert.Contains(t, out, "매수 완료")
	assert.Contains(t, out, "추가되었습니다.")
	assert.Contains(t, out, "== WATCHLIST ==")
	assert.Contains(t, out, "== PLAYER alice ==")
	assert.Contains(t, out, "97,000")
	assert.Contains(t, out, "DATA_NOT_FOUND")
	assert.Contains(t, out, "로그아웃되었습니다.")
	assert.Contains(t, out, "로그인 후 확인 가능합니다.")
	assert.Contains(t, out, "알 수 없는 명령입니다.")
	assert.Equal(t, 1, strings.Count(out, "== STOCKS =="), "nothing runs after quit")
}

func TestShellPromptsForMissingArgs(t *testing.T) {
	out := runScript(t, strings.Join([]string{
		"signup",
		"",
		"bob",
		"pw",
		"abc",
		"5000",
		"login bob",
		"pw",
		"stocks",
		"buy",
		"1",
		"x",
		"2",
		"player bob",
	}, "\n"))

	assert.Contains(t, out, "Player ID 항목은 필수입니다.")
	assert.Contains(t, out, "숫자를 입력해 주세요.")
	assert.Contains(t, out, "정수를 입력해 주세요.")
	assert.Contains(t, out, "종목: 1, 2, 3")
	assert.Contains(t, out, "매수 완료")
	assert.Contains(t, out, "3,000")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate(" abc ", 5))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "삼성...", truncate("삼성전자우선주", 7))
}

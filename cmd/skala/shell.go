package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"skaladash/internal/cache"
	"skaladash/internal/client"
	"skaladash/internal/dashboard"

	"github.com/fatih/color"
)

const helpText = `명령어:
  login [id]            로그인
  signup [id]           회원가입
  logout                로그아웃
  whoami                현재 세션
  ranking | players | stocks | watchlist
                        목록 새로고침 후 표시
  player <id>           플레이어 상세
  stock <id>            종목 상세
  buy [stockId] [qty]   매수
  sell [stockId] [qty]  매도
  watch [stockId]       관심종목 추가
  unwatch [stockId]     관심종목 삭제
  help | quit`

var viewTitles = map[cache.Kind]string{
	cache.Ranking:   "RANKING",
	cache.Players:   "PLAYERS",
	cache.Stocks:    "STOCKS",
	cache.Watchlist: "WATCHLIST",
}

type shell struct {
	ctl *dashboard.Controller
	*console
}

func runShell(ctx context.Context, ctl *dashboard.Controller) error {
	sh := &shell{ctl: ctl, console: newConsole(os.Stdin, color.Output)}
	return sh.loop(ctx)
}

func (sh *shell) loop(ctx context.Context) error {
	accent.Fprintln(sh.out, "SKALA Stock Dashboard · 'help' 로 명령어를 확인하세요.")
	for ctx.Err() == nil {
		who := "guest"
		if s := sh.ctl.Session(); s.Authenticated {
			who = s.Identity
		}
		fmt.Fprintf(sh.out, "%s> ", who)
		line, err := sh.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		quit, err := sh.dispatch(ctx, strings.ToLower(fields[0]), fields[1:])
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
	return nil
}

func (sh *shell) dispatch(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		sh.printInfo(helpText)
	case "login":
		return false, sh.login(ctx, args)
	case "signup":
		return false, sh.signup(ctx, args)
	case "logout":
		sh.printResult(sh.ctl.Logout())
	case "whoami":
		s := sh.ctl.Session()
		if !s.Authenticated {
			sh.printInfo("로그인되어 있지 않습니다.")
			break
		}
		sh.printInfo(fmt.Sprintf("%s (cookie=%t)", s.Identity, s.HasCredential))
	case "ranking":
		sh.show(ctx, cache.Ranking)
	case "players":
		sh.show(ctx, cache.Players)
	case "stocks":
		sh.show(ctx, cache.Stocks)
	case "watchlist":
		if !sh.ctl.Session().Authenticated {
			sh.printInfo("로그인 후 확인 가능합니다.")
			break
		}
		sh.show(ctx, cache.Watchlist)
	case "player":
		id, err := sh.arg(args, 0, "Player ID")
		if err != nil {
			return false, err
		}
		rec, r := sh.ctl.PlayerDetail(ctx, id)
		if !r.OK {
			sh.printResult(r)
			break
		}
		sh.renderRecord("PLAYER "+id, rec)
	case "stock":
		id, err := sh.arg(args, 0, "Stock ID")
		if err != nil {
			return false, err
		}
		rec, r := sh.ctl.StockDetail(ctx, client.StockID(id))
		if !r.OK {
			sh.printResult(r)
			break
		}
		sh.renderRecord("STOCK "+id, rec)
	case "buy", "sell":
		return false, sh.trade(ctx, cmd, args)
	case "watch":
		return false, sh.watch(ctx, args, false)
	case "unwatch":
		return false, sh.watch(ctx, args, true)
	default:
		sh.printWarn("알 수 없는 명령입니다. 'help' 를 입력해 보세요.")
	}
	return false, nil
}

func (sh *shell) show(ctx context.Context, kind cache.Kind) {
	r := sh.ctl.Refresh(ctx, kind)
	sh.printResult(r)
	if r.OK {
		sh.renderSnapshot(viewTitles[kind], kind, sh.ctl.Snapshot(kind))
	}
}

func (sh *shell) login(ctx context.Context, args []string) error {
	id, err := sh.arg(args, 0, "Player ID")
	if err != nil {
		return err
	}
	pw, err := sh.promptSecret("Password")
	if err != nil {
		return err
	}
	sh.printResult(sh.ctl.Login(ctx, id, pw))
	return nil
}

func (sh *shell) signup(ctx context.Context, args []string) error {
	id, err := sh.arg(args, 0, "Player ID")
	if err != nil {
		return err
	}
	pw, err := sh.promptSecret("Password")
	if err != nil {
		return err
	}
	money, err := sh.promptFloat("초기 자산", dashboard.DefaultInitialMoney)
	if err != nil {
		return err
	}
	sh.printResult(sh.ctl.Signup(ctx, id, pw, money))
	return nil
}

func (sh *shell) trade(ctx context.Context, side string, args []string) error {
	if r, ok := sh.ctl.Gate(side); !ok {
		sh.printResult(r)
		return nil
	}
	if len(args) == 0 {
		sh.hintChoices("종목", sh.ctl.StockChoices())
	}
	id, err := sh.arg(args, 0, "Stock ID")
	if err != nil {
		return err
	}
	qty := 0
	if len(args) > 1 {
		// A bad count stays 0 and is rejected by the controller.
		qty, _ = strconv.Atoi(args[1])
	} else if qty, err = sh.promptInt("수량", 1); err != nil {
		return err
	}
	if side == "sell" {
		sh.printResult(sh.ctl.Sell(ctx, client.StockID(id), qty))
	} else {
		sh.printResult(sh.ctl.Buy(ctx, client.StockID(id), qty))
	}
	return nil
}

func (sh *shell) watch(ctx context.Context, args []string, remove bool) error {
	action := "watch"
	if remove {
		action = "unwatch"
	}
	if r, ok := sh.ctl.Gate(action); !ok {
		sh.printResult(r)
		return nil
	}
	if len(args) == 0 {
		if remove {
			sh.hintChoices("관심종목", sh.ctl.WatchCandidates())
		} else {
			sh.hintChoices("종목", sh.ctl.StockChoices())
		}
	}
	id, err := sh.arg(args, 0, "Stock ID")
	if err != nil {
		return err
	}
	if remove {
		sh.printResult(sh.ctl.Unwatch(ctx, client.StockID(id)))
	} else {
		sh.printResult(sh.ctl.Watch(ctx, client.StockID(id)))
	}
	return nil
}

// arg returns args[i], prompting for it when missing.
func (sh *shell) arg(args []string, i int, label string) (string, error) {
	if i < len(args) && strings.TrimSpace(args[i]) != "" {
		return args[i], nil
	}
	return sh.promptRequired(label)
}

func (sh *shell) hintChoices(label string, ids []client.StockID) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	muted.Fprintf(sh.out, "%s: %s\n", label, strings.Join(parts, ", "))
}

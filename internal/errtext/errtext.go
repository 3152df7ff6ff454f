// Package errtext turns failed outcomes into messages an operator can act on.
package errtext

import (
	"fmt"
	"strings"

	"skaladash/internal/envelope"
)

const (
	AccountNotFound  = "해당 ID로 가입된 계정을 찾을 수 없습니다. 회원가입 후 다시 시도해 주세요."
	PasswordMismatch = "비밀번호가 일치하지 않습니다. 다시 입력해 주세요."
	LoginFailed      = "로그인에 실패했습니다. 입력 정보를 다시 확인해 주세요."
	LoginUnavailable = "서버와 통신 중 문제가 발생했어요. 잠시 후 다시 시도해 주세요."
	DefaultFailure   = "실패"
)

// Marker pairs a substring of the backend message with the explanation it
// stands for.
type Marker struct {
	Needle string
	Text   string
}

// Translator maps failures to curated explanations. The zero value is not
// useful; build one with New or Default.
type Translator struct {
	codes       map[int]string
	markers     []Marker
	fallback    string
	unreachable string
}

func New(codes map[int]string, markers []Marker, fallback, unreachable string) *Translator {
	table := make(map[int]string, len(codes))
	for code, text := range codes {
		table[code] = text
	}
	ms := make([]Marker, 0, len(markers))
	for _, m := range markers {
		if strings.TrimSpace(m.Needle) == "" {
			continue
		}
		ms = append(ms, Marker{Needle: strings.ToUpper(m.Needle), Text: m.Text})
	}
	if fallback == "" {
		fallback = LoginFailed
	}
	if unreachable == "" {
		unreachable = fallback
	}
	return &Translator{codes: table, markers: ms, fallback: fallback, unreachable: unreachable}
}

// Default is the table used for the login flow.
func Default() *Translator {
	return New(
		map[int]string{
			envelope.CodeDataNotFound:     AccountNotFound,
			envelope.CodeNotAuthenticated: PasswordMismatch,
		},
		[]Marker{
			// Substring matching only covers backends that omit the code.
			{Needle: "NOT_AUTHENTICATED", Text: PasswordMismatch},
			{Needle: "DATA_NOT_FOUND", Text: AccountNotFound},
		},
		LoginFailed,
		LoginUnavailable,
	)
}

// Translate always returns a non-empty message. Success outcomes get an empty
// string since there is nothing to explain.
func (t *Translator) Translate(o envelope.Outcome) string {
	if o.OK() {
		return ""
	}
	if o.Kind == envelope.KindTransport {
		return t.unreachable
	}
	if o.HasCode {
		if text, ok := t.codes[o.Code]; ok {
			return text
		}
	}
	msg := strings.ToUpper(o.Message)
	for _, m := range t.markers {
		if strings.Contains(msg, m.Needle) {
			return m.Text
		}
	}
	return t.fallback
}

// Generic renders "{message} (code={code})" without the curated table.
// Failures that never carried a code render their message alone.
func Generic(o envelope.Outcome) string {
	if o.OK() {
		return ""
	}
	if !o.HasCode {
		if strings.TrimSpace(o.Message) == "" {
			return envelope.GenericFailure
		}
		return o.Message
	}
	msg := o.Message
	if strings.TrimSpace(msg) == "" {
		msg = DefaultFailure
	}
	return fmt.Sprintf("%s (code=%d)", msg, o.Code)
}

package envelope

import (
	"bytes"
	"encoding/json"
)

// GenericFailure is the message carried by failures that never produced a
// well-formed envelope.
const GenericFailure = "요청 실패"

// Result codes the backend puts in the envelope's code field.
const (
	CodeOK               = 0
	CodeSystemError      = 9001
	CodeParameter        = 9002
	CodeDataDuplicated   = 9007
	CodeDataNotFound     = 9008
	CodeNotAuthenticated = 9009
	CodeInsufficientFund = 9010
	CodeInsufficientQty  = 9011
)

// ResultFail is the result value the backend uses for every failure.
const ResultFail = 1

type Kind int

const (
	KindSuccess Kind = iota
	KindProtocol
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindProtocol:
		return "protocol"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Envelope is the wire wrapper returned by every backend endpoint.
type Envelope struct {
	Result  int             `json:"result"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Body    json.RawMessage `json:"body,omitempty"`
}

// Outcome is the decoded result of one API call.
type Outcome struct {
	Kind    Kind
	Code    int
	HasCode bool
	Message string
	Body    json.RawMessage
}

func Success(body json.RawMessage) Outcome {
	return Outcome{Kind: KindSuccess, Body: normalizeBody(body)}
}

func Failure(code int, message string) Outcome {
	return Outcome{Kind: KindProtocol, Code: code, HasCode: true, Message: message}
}

// TransportFailure is a failure without a machine code. An empty message
// becomes GenericFailure.
func TransportFailure(message string) Outcome {
	if message == "" {
		message = GenericFailure
	}
	return Outcome{Kind: KindTransport, Message: message}
}

func (o Outcome) OK() bool {
	return o.Kind == KindSuccess
}

type wireEnvelope struct {
	Result  *int            `json:"result"`
	Code    *int            `json:"code"`
	Message *string         `json:"message"`
	Body    json.RawMessage `json:"body"`
}

// Decode interprets raw as an envelope. It never fails: anything that is not
// a JSON object with numeric result and code degrades to a transport failure.
func Decode(raw []byte) Outcome {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return TransportFailure("")
	}
	var w wireEnvelope
	if err := json.Unmarshal(trimmed, &w); err != nil {
		return TransportFailure("")
	}
	if w.Result == nil || w.Code == nil {
		return TransportFailure("")
	}
	if *w.Result == 0 && *w.Code == CodeOK {
		return Success(w.Body)
	}
	msg := ""
	if w.Message != nil {
		msg = *w.Message
	}
	return Outcome{Kind: KindProtocol, Code: *w.Code, HasCode: true, Message: msg}
}

// BodyOf returns the payload of a success and nil for anything else, so
// callers can treat "no data" and "failed" the same way.
func BodyOf(o Outcome) json.RawMessage {
	if !o.OK() {
		return nil
	}
	return o.Body
}

// Encode builds the wire form of an outcome. Used by the backend double.
func Encode(o Outcome) Envelope {
	if o.OK() {
		return Envelope{Result: 0, Code: CodeOK, Body: o.Body}
	}
	return Envelope{Result: ResultFail, Code: o.Code, Message: o.Message}
}

func normalizeBody(body json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

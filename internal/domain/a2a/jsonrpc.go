package a2a

import (
	"encoding/json"
	"strings"
)

const (
	Version = "2.0"

	MethodMessageSend = "message/send"

	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

const (
	RoleUser  = "user"
	RoleAgent = "agent"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  *SendParams     `json:"params,omitempty"`
}

type SendParams struct {
	Message *Message `json:"message,omitempty"`
}

type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func TextPart(text string) Part {
	return Part{Type: "text", Text: text}
}

// Text joins every part's text with single spaces.
func (m Message) Text() string {
	texts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, " ")
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type SendResult struct {
	Message Message `json:"message"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *SendResult     `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NullID is the id used when the request could not be parsed.
var NullID = json.RawMessage("null")

func ErrorResponse(id json.RawMessage, code int, msg string) Response {
	if len(id) == 0 {
		id = NullID
	}
	return Response{JSONRPC: Version, ID: id, Error: &Error{Code: code, Message: msg}}
}

func ResultResponse(id json.RawMessage, msg Message) Response {
	if len(id) == 0 {
		id = NullID
	}
	return Response{JSONRPC: Version, ID: id, Result: &SendResult{Message: msg}}
}

package generate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind classifies adapter failures.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindConfiguration Kind = "ConfigurationError"
	KindProvider      Kind = "ProviderError"
	KindEmptyResponse Kind = "EmptyResponse"
	KindUnexpected    Kind = "UnexpectedResponseShape"
	KindPersistence   Kind = "PersistenceError"
)

// Client-facing messages
const (
	MsgPromptRequired   = "Prompt is required"
	MsgInvalidModel     = "Invalid model specified"
	MsgInvalidBody      = "Invalid request body"
	MsgGenerationFailed = "Generation failed. Please ensure API keys are configured."
	MsgDemo             = "API keys not configured. Showing example image."
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an adapter error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// providerMessage - 에러 메시지 추출 ({"error":{"message"}} 우선, 없으면 "<status> - <body>")
func providerMessage(status string, body []byte) string {
	var structured struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Message != "" {
		return structured.Error.Message
	}
	return fmt.Sprintf("%s - %s", status, strings.TrimSpace(string(body)))
}

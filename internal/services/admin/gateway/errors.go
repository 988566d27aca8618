package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	"github.com/tidwall/gjson"
)

// UnknownError is the message used when the upstream gave nothing usable.
const UnknownError = "Unknown Error!"

// Error is a normalized upstream failure.
type Error struct {
	// Status is the upstream status; zero when no response arrived.
	Status int
	// List holds data.listMessage from the upstream body.
	List []string
	// Message is the top-level upstream message.
	Message string
	LogID   string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream unreachable: %v", e.Err)
	}
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Joined())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Messages returns data.listMessage when present, else the top-level message.
func (e *Error) Messages() []string {
	if len(e.List) > 0 {
		return append([]string(nil), e.List...)
	}
	if e.Message != "" {
		return []string{e.Message}
	}
	return nil
}

// Joined renders the messages the way create failures report them.
func (e *Error) Joined() string {
	if joined := strings.Join(e.Messages(), ", "); joined != "" {
		return joined
	}
	return UnknownError
}

// HTTPStatus is the status relayed to console clients.
func (e *Error) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadGateway
	}
	return e.Status
}

// Normalize converts an upstream client failure into *Error. Other errors are
// treated as "no response".
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var normalized *Error
	if errors.As(err, &normalized) {
		return normalized
	}
	var upstreamErr *upstream.Error
	if !errors.As(err, &upstreamErr) || !upstreamErr.Responded() {
		return &Error{Err: err}
	}
	out := &Error{Status: upstreamErr.Status, Err: err}
	body := upstreamErr.Body
	if !gjson.ValidBytes(body) {
		return out
	}
	if list := gjson.GetBytes(body, "data.listMessage"); list.IsArray() {
		for _, item := range list.Array() {
			if text := strings.TrimSpace(item.String()); text != "" {
				out.List = append(out.List, text)
			}
		}
	}
	message := gjson.GetBytes(body, "message")
	switch {
	case message.Type == gjson.String:
		out.Message = strings.TrimSpace(message.String())
	case message.IsArray():
		var parts []string
		for _, item := range message.Array() {
			if text := strings.TrimSpace(item.String()); text != "" {
				parts = append(parts, text)
			}
		}
		out.Message = strings.Join(parts, ", ")
	}
	out.LogID = gjson.GetBytes(body, "logId").String()
	return out
}

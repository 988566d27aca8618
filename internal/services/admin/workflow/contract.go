package workflow

import (
	"context"
	"errors"
	"strings"
)

// Reply is what the upstream returned for a successful write.
type Reply struct {
	Message string
	// ID is the identifier of a created record when the upstream reports one.
	ID string
}

// CreatePayload is the batch-shaped body sent when creating records.
type CreatePayload struct {
	Data []Draft `json:"data"`
}

// Store persists drafts for one upstream resource collection.
type Store interface {
	Create(ctx context.Context, resource string, payload CreatePayload) (Reply, error)
	Update(ctx context.Context, resource string, id string, record Draft) (Reply, error)
}

// Deleter removes one record from an upstream resource collection.
type Deleter interface {
	Delete(ctx context.Context, resource string, id string) (Reply, error)
}

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient user-facing message.
type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f.
func (f NotifierFunc) Notify(n Notice) {
	if f != nil {
		f(n)
	}
}

// Navigator moves the user to another console route.
type Navigator interface {
	Navigate(target string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(target string) {
	if f != nil {
		f(target)
	}
}

// ServerMessages is implemented by errors that carry upstream messages.
type ServerMessages interface {
	Messages() []string
}

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrSubmitInFlight  = errors.New("submit already in flight")
	ErrDeleteInFlight  = errors.New("delete already in flight")
	ErrNothingSelected = errors.New("no row selected")
	ErrClosed          = errors.New("controller closed")
)

// FailureMessage renders err for a notice: the upstream messages joined with
// ", " when present, the localized unknown-error text otherwise.
func FailureMessage(err error, loc Localizer) string {
	var carrier ServerMessages
	if errors.As(err, &carrier) {
		var parts []string
		for _, message := range carrier.Messages() {
			if trimmed := strings.TrimSpace(message); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return localizerOrDefault(loc).Sprintf(KeyUnknownError)
}

func successMessage(reply Reply, fallbackKey string, loc Localizer) string {
	if message := strings.TrimSpace(reply.Message); message != "" {
		return message
	}
	return localizerOrDefault(loc).Sprintf(fallbackKey)
}

package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"sync"
)

// NoSelection is the selected-row sentinel.
const NoSelection = ""

// Dialog is the delete-confirmation state.
type Dialog struct {
	Open     bool
	Deleting bool
	// Err carries the last failure when the dialog stays open for retry.
	Err string
}

// ListConfig wires a ListController.
type ListConfig struct {
	Resource string
	Deleter  Deleter
	Notifier Notifier
	// Reload re-fetches the list after a successful delete.
	Reload func(ctx context.Context) error
	// KeepOpenOnFailure keeps the dialog open with the error for a retry
	// instead of closing it.
	KeepOpenOnFailure bool
	Localizer         Localizer
}

// ListController owns row selection and the delete-confirmation lifecycle.
type ListController struct {
	cfg ListConfig

	mu       sync.Mutex
	selected string
	dialog   Dialog
}

// NewListController builds a list controller.
func NewListController(cfg ListConfig) (*ListController, error) {
	if strings.TrimSpace(cfg.Resource) == "" {
		return nil, errors.New("resource is required")
	}
	if cfg.Deleter == nil {
		return nil, errors.New("deleter is required")
	}
	cfg.Localizer = localizerOrDefault(cfg.Localizer)
	return &ListController{cfg: cfg}, nil
}

// Selected returns the selected row id or NoSelection.
func (c *ListController) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Dialog returns the confirmation dialog state.
func (c *ListController) Dialog() Dialog {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialog
}

// RequestDelete selects rowID and opens the confirmation dialog.
func (c *ListController) RequestDelete(rowID string) error {
	rowID = strings.TrimSpace(rowID)
	if rowID == NoSelection {
		return ErrNothingSelected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Deleting {
		return ErrDeleteInFlight
	}
	c.selected = rowID
	c.dialog = Dialog{Open: true}
	return nil
}

// CancelDelete closes the dialog and clears the selection.
func (c *ListController) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dialog.Deleting {
		return
	}
	c.selected = NoSelection
	c.dialog = Dialog{}
}

// ConfirmDelete deletes the selected row. On success the dialog closes and
// the list reloads. On failure an error notice is shown and the dialog
// closes, or stays open with the error when KeepOpenOnFailure is set.
func (c *ListController) ConfirmDelete(ctx context.Context) (Reply, error) {
	c.mu.Lock()
	if c.selected == NoSelection || !c.dialog.Open {
		c.mu.Unlock()
		return Reply{}, ErrNothingSelected
	}
	if c.dialog.Deleting {
		c.mu.Unlock()
		return Reply{}, ErrDeleteInFlight
	}
	c.dialog.Deleting = true
	c.dialog.Err = ""
	id := c.selected
	c.mu.Unlock()

	reply, err := c.cfg.Deleter.Delete(ctx, c.cfg.Resource, id)
	if err != nil {
		message := FailureMessage(err, c.cfg.Localizer)
		c.mu.Lock()
		if c.cfg.KeepOpenOnFailure {
			c.dialog = Dialog{Open: true, Err: message}
		} else {
			c.selected = NoSelection
			c.dialog = Dialog{}
		}
		c.mu.Unlock()
		c.notify(Notice{Level: LevelError, Message: message})
		return Reply{}, err
	}

	c.mu.Lock()
	c.selected = NoSelection
	c.dialog = Dialog{}
	c.mu.Unlock()

	if c.cfg.Reload != nil {
		if reloadErr := c.cfg.Reload(ctx); reloadErr != nil {
			c.notify(Notice{Level: LevelError, Message: FailureMessage(reloadErr, c.cfg.Localizer)})
		}
	}
	c.notify(Notice{Level: LevelSuccess, Message: successMessage(reply, KeyDeleted, c.cfg.Localizer)})
	return reply, nil
}

func (c *ListController) notify(notice Notice) {
	if c.cfg.Notifier != nil {
		c.cfg.Notifier.Notify(notice)
	}
}

// EncodeID obfuscates a row id for browser URLs. It is reversible and is not
// an access control.
func EncodeID(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(id))
}

// CreateTarget is the route of the create form under a list path.
func CreateTarget(listPath string) string {
	return strings.TrimRight(listPath, "/") + "/create"
}

// EditTarget is the route of the update form for rowID under a list path.
func EditTarget(listPath string, rowID string) string {
	return strings.TrimRight(listPath, "/") + "/update?id=" + url.QueryEscape(EncodeID(rowID))
}

// ErrInvalidID reports an identifier that is not base64.
var ErrInvalidID = errors.New("invalid record id")

// DecodeID reverses EncodeID. URL-safe and unpadded encodings are accepted
// too since browsers and proxies rewrite padding.
func DecodeID(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", ErrInvalidID
	}
	for _, encoding := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		decoded, err := encoding.DecodeString(encoded)
		if err == nil && len(decoded) > 0 {
			return string(decoded), nil
		}
	}
	return "", ErrInvalidID
}

package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newActivityList(t *testing.T, cfg ListConfig) *ListController {
	t.Helper()
	if cfg.Resource == "" {
		cfg.Resource = "yard-activities"
	}
	c, err := NewListController(cfg)
	if err != nil {
		t.Fatalf("new list controller: %v", err)
	}
	return c
}

func TestRequestDeleteOpensDialogWithoutRequest(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := newActivityList(t, ListConfig{Deleter: store})

	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if c.Selected() != "42" {
		t.Fatalf("selected = %q, want 42", c.Selected())
	}
	if diff := cmp.Diff(Dialog{Open: true}, c.Dialog()); diff != "" {
		t.Fatalf("dialog mismatch (-want +got):\n%s", diff)
	}
	if got := len(store.Calls()); got != 0 {
		t.Fatalf("store calls = %d, want 0", got)
	}
}

func TestRequestDeleteRejectsSentinel(t *testing.T) {
	t.Parallel()

	c := newActivityList(t, ListConfig{Deleter: &fakeStore{}})
	if err := c.RequestDelete(NoSelection); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("error = %v, want ErrNothingSelected", err)
	}
}

func TestCancelDeleteResetsSelection(t *testing.T) {
	t.Parallel()

	c := newActivityList(t, ListConfig{Deleter: &fakeStore{}})
	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	c.CancelDelete()
	if c.Selected() != NoSelection || c.Dialog().Open {
		t.Fatalf("selected = %q dialog = %+v, want reset", c.Selected(), c.Dialog())
	}
}

func TestConfirmDeleteSuccessReloadsAndNotifies(t *testing.T) {
	t.Parallel()

	store := &fakeStore{reply: Reply{Message: "Deleted yard activity"}}
	notifier := &recordingNotifier{}
	reloads := 0
	c := newActivityList(t, ListConfig{
		Deleter:  store,
		Notifier: notifier,
		Reload: func(context.Context) error {
			reloads++
			return nil
		},
	})

	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if _, err := c.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("confirm delete: %v", err)
	}

	if diff := cmp.Diff([]storeCall{{Method: "DELETE", Resource: "yard-activities", ID: "42"}}, store.Calls()); diff != "" {
		t.Fatalf("store calls mismatch (-want +got):\n%s", diff)
	}
	if reloads != 1 {
		t.Fatalf("reloads = %d, want 1", reloads)
	}
	if diff := cmp.Diff(Dialog{}, c.Dialog()); diff != "" {
		t.Fatalf("dialog mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Notice{{Level: LevelSuccess, Message: "Deleted yard activity"}}, notifier.Notices()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestConfirmDeleteFailureClosesDialog(t *testing.T) {
	t.Parallel()

	failure := &upstreamErr{messages: []string{"activity is in use"}}
	notifier := &recordingNotifier{}
	reloads := 0
	c := newActivityList(t, ListConfig{
		Deleter:  &fakeStore{err: failure},
		Notifier: notifier,
		Reload: func(context.Context) error {
			reloads++
			return nil
		},
	})

	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if _, err := c.ConfirmDelete(context.Background()); !errors.Is(err, failure) {
		t.Fatalf("confirm delete error = %v, want %v", err, failure)
	}

	dialog := c.Dialog()
	if dialog.Open || dialog.Deleting {
		t.Fatalf("dialog = %+v, want closed and not deleting", dialog)
	}
	if reloads != 0 {
		t.Fatalf("reloads = %d, want 0 after failure", reloads)
	}
	if diff := cmp.Diff([]Notice{{Level: LevelError, Message: "activity is in use"}}, notifier.Notices()); diff != "" {
		t.Fatalf("notices mismatch (-want +got):\n%s", diff)
	}
}

func TestConfirmDeleteFailureKeepsDialogForRetry(t *testing.T) {
	t.Parallel()

	store := &fakeStore{err: &upstreamErr{}}
	c := newActivityList(t, ListConfig{Deleter: store, KeepOpenOnFailure: true})

	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}
	if _, err := c.ConfirmDelete(context.Background()); err == nil {
		t.Fatal("expected delete failure")
	}
	if diff := cmp.Diff(Dialog{Open: true, Err: "Unknown Error!"}, c.Dialog()); diff != "" {
		t.Fatalf("dialog mismatch (-want +got):\n%s", diff)
	}
	if c.Selected() != "42" {
		t.Fatalf("selected = %q, want 42 kept for retry", c.Selected())
	}

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()
	if _, err := c.ConfirmDelete(context.Background()); err != nil {
		t.Fatalf("retry delete: %v", err)
	}
	if c.Dialog().Open {
		t.Fatal("expected dialog to close after successful retry")
	}
	if got := len(store.Calls()); got != 2 {
		t.Fatalf("store calls = %d, want 2", got)
	}
}

func TestConfirmDeleteWithoutSelection(t *testing.T) {
	t.Parallel()

	c := newActivityList(t, ListConfig{Deleter: &fakeStore{}})
	if _, err := c.ConfirmDelete(context.Background()); !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("error = %v, want ErrNothingSelected", err)
	}
}

func TestConfirmDeleteRejectsConcurrentDelete(t *testing.T) {
	t.Parallel()

	store := &fakeStore{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	c := newActivityList(t, ListConfig{Deleter: store})
	if err := c.RequestDelete("42"); err != nil {
		t.Fatalf("request delete: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := c.ConfirmDelete(context.Background())
		done <- err
	}()
	<-store.entered

	if !c.Dialog().Deleting {
		t.Fatal("expected deleting while request is in flight")
	}
	if _, err := c.ConfirmDelete(context.Background()); !errors.Is(err, ErrDeleteInFlight) {
		t.Fatalf("second confirm error = %v, want ErrDeleteInFlight", err)
	}
	if err := c.RequestDelete("43"); !errors.Is(err, ErrDeleteInFlight) {
		t.Fatalf("request during delete error = %v, want ErrDeleteInFlight", err)
	}

	close(store.block)
	if err := <-done; err != nil {
		t.Fatalf("first confirm: %v", err)
	}
}

func TestListNavigationTargets(t *testing.T) {
	t.Parallel()

	list := "/en/yard-management-system/master/activity"
	if got := CreateTarget(list + "/"); got != list+"/create" {
		t.Fatalf("CreateTarget = %q", got)
	}
	if got := EditTarget(list, "42"); got != list+"/update?id=NDI%3D" {
		t.Fatalf("EditTarget = %q", got)
	}
}

func TestDecodeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		encoded string
		want    string
		wantErr bool
	}{
		{encoded: "NDI=", want: "42"},
		{encoded: "NDI", want: "42"},
		{encoded: EncodeID("a/b?c"), want: "a/b?c"},
		{encoded: "", wantErr: true},
		{encoded: "%%%", wantErr: true},
	}
	for _, tc := range tests {
		got, err := DecodeID(tc.encoded)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidID) {
				t.Fatalf("DecodeID(%q) error = %v, want ErrInvalidID", tc.encoded, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("DecodeID(%q): %v", tc.encoded, err)
		}
		if got != tc.want {
			t.Fatalf("DecodeID(%q) = %q, want %q", tc.encoded, got, tc.want)
		}
	}
}

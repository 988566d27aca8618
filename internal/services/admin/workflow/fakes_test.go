package workflow

import (
	"context"
	"strings"
	"sync"
	"time"
)

type storeCall struct {
	Method   string
	Resource string
	ID       string
	Body     any
}

type fakeStore struct {
	mu    sync.Mutex
	calls []storeCall
	reply Reply
	err   error
	// block, when set, holds every call until it is closed.
	block   chan struct{}
	entered chan struct{}
}

func (s *fakeStore) Create(ctx context.Context, resource string, payload CreatePayload) (Reply, error) {
	return s.record(ctx, storeCall{Method: "POST", Resource: resource, Body: payload})
}

func (s *fakeStore) Update(ctx context.Context, resource string, id string, record Draft) (Reply, error) {
	return s.record(ctx, storeCall{Method: "PUT", Resource: resource, ID: id, Body: record})
}

func (s *fakeStore) Delete(ctx context.Context, resource string, id string) (Reply, error) {
	return s.record(ctx, storeCall{Method: "DELETE", Resource: resource, ID: id})
}

func (s *fakeStore) record(ctx context.Context, call storeCall) (Reply, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	block := s.block
	entered := s.entered
	s.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		}
	}
	return s.reply, s.err
}

func (s *fakeStore) Calls() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storeCall(nil), s.calls...)
}

type upstreamErr struct {
	messages []string
}

func (e *upstreamErr) Error() string      { return strings.Join(e.messages, "; ") }
func (e *upstreamErr) Messages() []string { return e.messages }

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) Notices() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.notices...)
}

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) Targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.targets...)
}

// manualScheduler holds scheduled calls until Fire.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{delay: d, fn: f}
	s.tasks = append(s.tasks, task)
	return task
}

func (s *manualScheduler) Tasks() []*manualTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*manualTask(nil), s.tasks...)
}

// Fire runs every task that was not stopped, the way an expired timer would.
func (s *manualScheduler) Fire() {
	for _, task := range s.Tasks() {
		if task.stopped || task.fired {
			continue
		}
		task.fired = true
		task.fn()
	}
}

// immediateScheduler runs f on the caller's goroutine.
type immediateScheduler struct{}

func (immediateScheduler) AfterFunc(_ time.Duration, f func()) Task {
	f()
	return stoppedTask{}
}

type stoppedTask struct{}

func (stoppedTask) Stop() bool { return false }

var categorySchema = MustSchema(
	Field{Name: "yardActivityCategory", Kind: KindString, Required: true, MaxLength: 50},
	Field{Name: "isCreateTaskDoc", Kind: KindBool, Required: true},
)

var yardSchema = MustSchema(
	Field{Name: "yardCode", Kind: KindString, Required: true, MaxLength: 50},
	Field{Name: "yardName", Kind: KindString, Required: true, MaxLength: 255},
	Field{Name: "parentYardId", Kind: KindNumber, Required: true, RequiredKey: KeySelection},
	Field{Name: "latitude", Kind: KindNumber, Required: true},
)

func validYardDraft() Draft {
	return Draft{
		"yardCode":     "JKT01",
		"yardName":     "Jakarta Estate",
		"parentYardId": float64(3),
		"latitude":     -6.2,
	}
}

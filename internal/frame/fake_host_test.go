package frame

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeSub struct {
	host *fakeHost
	id   int
	once sync.Once
}

func (s *fakeSub) Release() {
	s.once.Do(func() {
		s.host.mu.Lock()
		delete(s.host.handlers, s.id)
		s.host.mu.Unlock()
	})
}

type registered struct {
	event Event
	h     Handler
}

type fakeHost struct {
	contextFunc  func(ctx context.Context) (*Context, error)
	addFrameFunc func(ctx context.Context) error

	addCalls   atomic.Int32
	readyCalls atomic.Int32

	mu       sync.Mutex
	nextID   int
	handlers map[int]registered
}

func newFakeHost(hc *Context) *fakeHost {
	return &fakeHost{
		contextFunc: func(context.Context) (*Context, error) { return hc, nil },
		handlers:    make(map[int]registered),
	}
}

func (f *fakeHost) Context(ctx context.Context) (*Context, error) {
	return f.contextFunc(ctx)
}

func (f *fakeHost) AddFrame(ctx context.Context) error {
	f.addCalls.Add(1)
	if f.addFrameFunc != nil {
		return f.addFrameFunc(ctx)
	}
	return nil
}

func (f *fakeHost) Ready(ctx context.Context, opts ReadyOptions) error {
	f.readyCalls.Add(1)
	return nil
}

func (f *fakeHost) Subscribe(event Event, h Handler) Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.handlers[f.nextID] = registered{event: event, h: h}
	return &fakeSub{host: f, id: f.nextID}
}

func (f *fakeHost) emit(event Event, p Payload) int {
	f.mu.Lock()
	var hs []Handler
	for _, r := range f.handlers {
		if r.event == event {
			hs = append(hs, r.h)
		}
	}
	f.mu.Unlock()

	for _, h := range hs {
		h(p)
	}
	return len(hs)
}

func (f *fakeHost) listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers)
}

type recordingLoader struct {
	mu   sync.Mutex
	fids []int64
	done chan struct{}
}

func newRecordingLoader() *recordingLoader {
	return &recordingLoader{done: make(chan struct{}, 1)}
}

func (l *recordingLoader) Load(ctx context.Context, fid int64) {
	l.mu.Lock()
	l.fids = append(l.fids, fid)
	l.mu.Unlock()
	l.done <- struct{}{}
}

type memGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *memGuard) Acquire(ctx context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]bool)
	}
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	return true, nil
}

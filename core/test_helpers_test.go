package core

import (
	"context"
	"fmt"
	"sync"
)

type fakeSubscription struct {
	owner *fakeSignalSource
	kind  SignalKind
	id    int
}

func (s *fakeSubscription) Unsubscribe() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	if _, ok := s.owner.handlers[s.kind][s.id]; !ok {
		return fmt.Errorf("fake: subscription %d already cancelled", s.id)
	}
	delete(s.owner.handlers[s.kind], s.id)
	s.owner.unsubscribed++
	return nil
}

type fakeSignalSource struct {
	mu           sync.Mutex
	next         int
	handlers     map[SignalKind]map[int]SignalHandler
	unsubscribed int
	subscribeErr map[SignalKind]error
}

func newFakeSignalSource() *fakeSignalSource {
	return &fakeSignalSource{handlers: map[SignalKind]map[int]SignalHandler{}}
}

func (s *fakeSignalSource) Subscribe(kind SignalKind, handler SignalHandler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.subscribeErr[kind]; err != nil {
		return nil, err
	}
	s.next++
	if s.handlers[kind] == nil {
		s.handlers[kind] = map[int]SignalHandler{}
	}
	s.handlers[kind][s.next] = handler
	return &fakeSubscription{owner: s, kind: kind, id: s.next}, nil
}

func (s *fakeSignalSource) emit(kind SignalKind, event Event) {
	s.mu.Lock()
	handlers := make([]SignalHandler, 0, len(s.handlers[kind]))
	for _, handler := range s.handlers[kind] {
		handlers = append(handlers, handler)
	}
	s.mu.Unlock()
	for _, handler := range handlers {
		handler(context.Background(), event)
	}
}

func (s *fakeSignalSource) active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, handlers := range s.handlers {
		total += len(handlers)
	}
	return total
}

type fakeManagerProxy struct {
	*fakeSignalSource
	path   string
	closed bool
}

func (p *fakeManagerProxy) Path() string { return p.path }

func (p *fakeManagerProxy) Close() error {
	p.closed = true
	return nil
}

type fakeObjectManager struct {
	*fakeSignalSource
	path    string
	objects []ManagedObject
	err     error
	calls   int
	closed  bool
}

func (p *fakeObjectManager) Path() string { return p.path }

func (p *fakeObjectManager) GetManagedObjects(context.Context) ([]ManagedObject, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.objects, nil
}

func (p *fakeObjectManager) Close() error {
	p.closed = true
	return nil
}

type fakeAdapterProxy struct {
	id     string
	path   string
	closed bool
}

func (p *fakeAdapterProxy) HandleID() string { return p.id }
func (p *fakeAdapterProxy) Path() string     { return p.path }

func (p *fakeAdapterProxy) Close() error {
	p.closed = true
	return nil
}

type fakeConnector struct {
	managerErr       error
	objectManagerErr error
	adapterErr       map[string]error

	objects          []ManagedObject
	enumerateErr     error
	subscribeErr     map[SignalKind]error
	managers         []*fakeManagerProxy
	objectManagers   []*fakeObjectManager
	adapters         []*fakeAdapterProxy
	nextAdapterIndex int
}

func (c *fakeConnector) NewManagerProxy(_ context.Context, _ string, path string) (ManagerProxy, error) {
	if c.managerErr != nil {
		return nil, c.managerErr
	}
	source := newFakeSignalSource()
	source.subscribeErr = c.subscribeErr
	proxy := &fakeManagerProxy{fakeSignalSource: source, path: path}
	c.managers = append(c.managers, proxy)
	return proxy, nil
}

func (c *fakeConnector) NewObjectManagerProxy(_ context.Context, _ string, path string) (ObjectManagerProxy, error) {
	if c.objectManagerErr != nil {
		return nil, c.objectManagerErr
	}
	source := newFakeSignalSource()
	source.subscribeErr = c.subscribeErr
	proxy := &fakeObjectManager{
		fakeSignalSource: source,
		path:             path,
		objects:          c.objects,
		err:              c.enumerateErr,
	}
	c.objectManagers = append(c.objectManagers, proxy)
	return proxy, nil
}

func (c *fakeConnector) NewAdapterProxy(_ context.Context, _ string, path string) (AdapterProxy, error) {
	if err := c.adapterErr[path]; err != nil {
		return nil, err
	}
	c.nextAdapterIndex++
	proxy := &fakeAdapterProxy{id: fmt.Sprintf("handle-%d", c.nextAdapterIndex), path: path}
	c.adapters = append(c.adapters, proxy)
	return proxy, nil
}

func (c *fakeConnector) lastManager() *fakeManagerProxy {
	if len(c.managers) == 0 {
		return nil
	}
	return c.managers[len(c.managers)-1]
}

func (c *fakeConnector) lastObjectManager() *fakeObjectManager {
	if len(c.objectManagers) == 0 {
		return nil
	}
	return c.objectManagers[len(c.objectManagers)-1]
}

func managedObjects(paths ...string) []ManagedObject {
	out := make([]ManagedObject, 0, len(paths))
	for _, path := range paths {
		out = append(out, ManagedObject{
			Path:       path,
			Interfaces: map[string]map[string]any{"org.neard.Adapter": {"Powered": true}},
		})
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.AdapterPathPrefix = "/org/svc/nfc"
	return cfg
}

func newTestManager(connector *fakeConnector, opts ...Option) (*Manager, error) {
	return NewManager(testConfig(), connector, opts...)
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
	err    error
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.values, nil
}

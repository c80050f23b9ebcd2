package dbus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	godbus "github.com/godbus/dbus/v5"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-neard/adapters/gologger"
	"github.com/goliatone/go-neard/core"
	"github.com/google/uuid"
)

const defaultSignalBuffer = 32

// BusConn is the subset of *godbus.Conn the connector relies on.
type BusConn interface {
	Object(dest string, path godbus.ObjectPath) godbus.BusObject
	BusObject() godbus.BusObject
	AddMatchSignal(options ...godbus.MatchOption) error
	RemoveMatchSignal(options ...godbus.MatchOption) error
	Signal(ch chan<- *godbus.Signal)
	RemoveSignal(ch chan<- *godbus.Signal)
	Close() error
}

type Option func(*Connector)

func WithLogger(logger glog.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

func WithLoggerProvider(provider glog.LoggerProvider) Option {
	return func(c *Connector) {
		c.loggerProvider = provider
	}
}

func WithSignalBuffer(size int) Option {
	return func(c *Connector) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// Connector implements core.Connector on a D-Bus connection.
type Connector struct {
	conn           BusConn
	logger         glog.Logger
	loggerProvider glog.LoggerProvider
	bufferSize     int

	mu      sync.Mutex
	subs    map[string]*subscription
	signals chan *godbus.Signal
	started bool
	done    chan struct{}
	stopped chan struct{}
}

func NewConnector(conn BusConn, opts ...Option) *Connector {
	c := &Connector{
		conn:       conn,
		bufferSize: defaultSignalBuffer,
		subs:       make(map[string]*subscription),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.logger = gologger.Component("neard.dbus", c.loggerProvider, c.logger)
	return c
}

// ConnectSystemBus dials the system bus and wraps it in a Connector.
func ConnectSystemBus(opts ...Option) (*Connector, error) {
	conn, err := godbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("dbus: connect system bus: %w", err)
	}
	return NewConnector(conn, opts...), nil
}

// Start launches the signal pump. Handlers run on the pump goroutine with
// ctx until ctx is cancelled or Close is called. Once ctx is cancelled the
// channel is unhooked from the connection and Start may be called again.
func (c *Connector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.signals = make(chan *godbus.Signal, c.bufferSize)
	c.done = make(chan struct{})
	c.stopped = make(chan struct{})
	signals, done, stopped := c.signals, c.done, c.stopped
	c.mu.Unlock()

	c.conn.Signal(signals)
	go c.pump(ctx, signals, done, stopped)
}

// Close stops the pump and closes the underlying connection.
func (c *Connector) Close() error {
	c.mu.Lock()
	started := c.started
	signals, done, stopped := c.signals, c.done, c.stopped
	c.started = false
	c.mu.Unlock()

	if started {
		c.conn.RemoveSignal(signals)
		close(done)
		<-stopped
	}
	return c.conn.Close()
}

func (c *Connector) pump(ctx context.Context, signals chan *godbus.Signal, done <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			c.detach(signals)
			return
		case <-done:
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			c.deliver(ctx, sig)
		}
	}
}

// detach unhooks signals after the pump context ends, unless Close already
// claimed the teardown.
func (c *Connector) detach(signals chan *godbus.Signal) {
	c.mu.Lock()
	owned := c.started && c.signals == signals
	if owned {
		c.started = false
		c.signals = nil
	}
	c.mu.Unlock()
	if owned {
		c.conn.RemoveSignal(signals)
	}
}

func (c *Connector) deliver(ctx context.Context, sig *godbus.Signal) {
	if sig == nil {
		return
	}
	for _, sub := range c.matching(sig) {
		event, err := decodeSignal(sub.kind, sig.Body)
		if err != nil {
			c.logger.Warn("dropping malformed signal", "signal", sig.Name, "path", string(sig.Path), "error", err)
			continue
		}
		sub.handler(ctx, event)
	}
}

func (c *Connector) matching(sig *godbus.Signal) []*subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*subscription, 0, 1)
	for _, sub := range c.subs {
		if sub.matches(sig) {
			out = append(out, sub)
		}
	}
	return out
}

func (c *Connector) NewManagerProxy(ctx context.Context, service string, path string) (core.ManagerProxy, error) {
	base, err := c.newRemoteProxy(ctx, service, path)
	if err != nil {
		return nil, err
	}
	return &ManagerProxy{remoteProxy: base}, nil
}

func (c *Connector) NewObjectManagerProxy(ctx context.Context, service string, path string) (core.ObjectManagerProxy, error) {
	base, err := c.newRemoteProxy(ctx, service, path)
	if err != nil {
		return nil, err
	}
	return &ObjectManagerProxy{remoteProxy: base}, nil
}

func (c *Connector) NewAdapterProxy(_ context.Context, service string, path string) (core.AdapterProxy, error) {
	objectPath := godbus.ObjectPath(path)
	if !objectPath.IsValid() {
		return nil, fmt.Errorf("dbus: invalid adapter path %q", path)
	}
	return &AdapterProxy{
		id:     uuid.NewString(),
		path:   path,
		object: c.conn.Object(service, objectPath),
	}, nil
}

func (c *Connector) newRemoteProxy(ctx context.Context, service string, path string) (*remoteProxy, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		return nil, fmt.Errorf("dbus: service name is required")
	}
	objectPath := godbus.ObjectPath(path)
	if !objectPath.IsValid() {
		return nil, fmt.Errorf("dbus: invalid object path %q", path)
	}
	var hasOwner bool
	if err := c.conn.BusObject().CallWithContext(ctx, nameHasOwnerMethod, 0, service).Store(&hasOwner); err != nil {
		return nil, fmt.Errorf("dbus: query owner of %s: %w", service, err)
	}
	if !hasOwner {
		return nil, fmt.Errorf("dbus: service %s is not running", service)
	}
	return &remoteProxy{
		connector: c,
		id:        uuid.NewString(),
		service:   service,
		path:      objectPath,
		object:    c.conn.Object(service, objectPath),
	}, nil
}

func (c *Connector) subscribe(owner *remoteProxy, kind core.SignalKind, handler core.SignalHandler) (*subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("dbus: signal handler is required")
	}
	iface, err := signalInterface(kind)
	if err != nil {
		return nil, err
	}
	sub := &subscription{
		id:        uuid.NewString(),
		connector: c,
		owner:     owner,
		kind:      kind,
		iface:     iface,
		handler:   handler,
	}
	if err := c.conn.AddMatchSignal(sub.matchOptions()...); err != nil {
		return nil, fmt.Errorf("dbus: add match for %s: %w", kind, err)
	}
	c.mu.Lock()
	c.subs[sub.id] = sub
	c.mu.Unlock()
	c.logger.Debug("signal subscribed", "signal", string(kind), "path", string(owner.path))
	return sub, nil
}

func (c *Connector) unsubscribe(sub *subscription) error {
	c.mu.Lock()
	if _, ok := c.subs[sub.id]; !ok {
		c.mu.Unlock()
		return nil
	}
	delete(c.subs, sub.id)
	c.mu.Unlock()
	if err := c.conn.RemoveMatchSignal(sub.matchOptions()...); err != nil {
		return fmt.Errorf("dbus: remove match for %s: %w", sub.kind, err)
	}
	return nil
}

// release drops every subscription still held by owner.
func (c *Connector) release(owner *remoteProxy) error {
	c.mu.Lock()
	owned := make([]*subscription, 0)
	for _, sub := range c.subs {
		if sub.owner == owner {
			owned = append(owned, sub)
		}
	}
	c.mu.Unlock()
	var firstErr error
	for _, sub := range owned {
		if err := c.unsubscribe(sub); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type subscription struct {
	id        string
	connector *Connector
	owner     *remoteProxy
	kind      core.SignalKind
	iface     string
	handler   core.SignalHandler
}

func (s *subscription) Unsubscribe() error {
	return s.connector.unsubscribe(s)
}

func (s *subscription) matchOptions() []godbus.MatchOption {
	return []godbus.MatchOption{
		godbus.WithMatchSender(s.owner.service),
		godbus.WithMatchObjectPath(s.owner.path),
		godbus.WithMatchInterface(s.iface),
		godbus.WithMatchMember(string(s.kind)),
	}
}

func (s *subscription) matches(sig *godbus.Signal) bool {
	return sig.Path == s.owner.path && sig.Name == s.iface+"."+string(s.kind)
}

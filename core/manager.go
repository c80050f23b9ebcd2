package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

var ErrConnectorRequired = errors.New("core: connector is required")

type State int

const (
	StateUninitialized State = iota
	StateProxyBound
	StateObjectManagerBound
	StateBootstrapped
	StateReady
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateProxyBound:
		return "proxy_bound"
	case StateObjectManagerBound:
		return "object_manager_bound"
	case StateBootstrapped:
		return "bootstrapped"
	case StateReady:
		return "ready"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager mirrors the remote neard manager and its adapters. Create and
// Destroy must be serialized by the caller; lookups are safe from any
// goroutine.
type Manager struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	connector       Connector
	lifecycle       AdapterLifecycle
	registry        *AdapterRegistry
	router          *SignalRouter
	isAdapterPath   func(string) bool

	state         State
	managerProxy  ManagerProxy
	objectManager ObjectManagerProxy
	subscriptions []Subscription
	snapshot      Snapshot

	observersMu     sync.RWMutex
	removedObserver AdapterRemovedObserver
	removedToken    any
	errorObserver   AdapterErrorObserver
	errorToken      any
}

func NewManager(cfg Config, connector Connector, opts ...Option) (*Manager, error) {
	if connector == nil {
		return nil, ErrConnectorRequired
	}
	builder := defaultManagerBuilder(cfg, connector)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("neard", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("neard"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.registry == nil {
		builder.registry = NewAdapterRegistry()
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.lifecycle == nil {
		builder.lifecycle = NewProxyAdapterLifecycle(connector, finalConfig.BusName)
	}

	m := &Manager{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		connector:       connector,
		lifecycle:       builder.lifecycle,
		registry:        builder.registry,
		isAdapterPath:   AdapterPathFilter(finalConfig.AdapterPathPrefix),
		state:           StateUninitialized,
	}
	m.router = newSignalRouter(m)
	return m, nil
}

// Setup builds a manager and runs Create. The manager is returned alongside a
// bootstrap error so callers can keep it for reactive population.
func Setup(ctx context.Context, cfg Config, connector Connector, opts ...Option) (*Manager, error) {
	m, err := NewManager(cfg, connector, opts...)
	if err != nil {
		return nil, err
	}
	if err := m.Create(ctx); err != nil {
		if IsProxyCreation(err) {
			return nil, err
		}
		return m, err
	}
	return m, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	if mapped := mapper(err); mapped != nil {
		return mapped
	}
	return err
}

func (m *Manager) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.config
}

func (m *Manager) State() State {
	if m == nil {
		return StateUninitialized
	}
	return m.state
}

func (m *Manager) Router() *SignalRouter {
	if m == nil {
		return nil
	}
	return m.router
}

func (m *Manager) Registry() *AdapterRegistry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Snapshot returns a detached copy of the last enumeration result.
func (m *Manager) Snapshot() Snapshot {
	if m == nil || m.snapshot.IsZero() {
		return Snapshot{}
	}
	return Snapshot{
		Objects: cloneManagedObjects(m.snapshot.Objects),
		TakenAt: m.snapshot.TakenAt,
	}
}

// Create binds the manager and object-manager proxies, seeds the registry from
// one enumeration and subscribes to remote signals. Calling it again rebinds
// the proxies without touching tracked adapters. The first bootstrap error is
// returned; adapters populated before it are kept and signals are subscribed
// regardless so later notifications can fill the gaps.
func (m *Manager) Create(ctx context.Context) (err error) {
	if m == nil {
		return InvalidParameterError("manager", "manager is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	startedAt := time.Now()
	defer func() {
		m.observeOperation(ctx, startedAt, opCreate, err, map[string]any{
			"state":    m.state.String(),
			"adapters": m.registry.Len(),
		})
	}()

	m.disconnect(ctx)

	managerProxy, proxyErr := m.connector.NewManagerProxy(ctx, m.config.BusName, m.config.ManagerPath)
	if proxyErr != nil {
		m.state = StateUninitialized
		return ProxyCreationError(proxyErr, m.config.ManagerPath)
	}
	m.managerProxy = managerProxy
	m.state = StateProxyBound

	objectManager, proxyErr := m.connector.NewObjectManagerProxy(ctx, m.config.BusName, m.config.ObjectManagerPath)
	if proxyErr != nil {
		m.closeManagerProxy(ctx)
		m.state = StateUninitialized
		return ProxyCreationError(proxyErr, m.config.ObjectManagerPath)
	}
	m.objectManager = objectManager
	m.state = StateObjectManagerBound

	var firstErr error
	names, snapshot, enumErr := EnumerateAdapters(ctx, objectManager, m.isAdapterPath)
	if enumErr != nil {
		m.snapshot = Snapshot{}
		firstErr = enumErr
	} else {
		m.snapshot = snapshot
		m.logDebug(ctx, "managed objects read", map[string]any{
			"objects":  len(snapshot.Objects),
			"adapters": names,
		})
	}
	for _, name := range names {
		if addErr := m.addAdapter(ctx, name, "bootstrap"); addErr != nil {
			firstErr = firstError(firstErr, addErr)
			break
		}
	}
	m.state = StateBootstrapped

	subs, subErr := m.router.Subscribe(managerProxy, objectManager)
	m.subscriptions = subs
	if subErr != nil {
		firstErr = firstError(firstErr, subErr)
	}
	m.state = StateReady
	return firstErr
}

func (m *Manager) addAdapter(ctx context.Context, name string, source string) error {
	if _, exists := m.registry.FindByName(name); exists {
		return nil
	}
	startedAt := time.Now()
	err := m.lifecycle.AddAdapter(ctx, m.registry, name)
	if IsAdapterConflict(err) {
		// Another add for the same name won the insert; the adapter is tracked.
		if _, exists := m.registry.FindByName(name); exists {
			err = nil
		}
	}
	m.observeOperation(ctx, startedAt, opAdapterAdd, err, map[string]any{"adapter": name, "source": source})
	if err != nil {
		return err
	}
	m.observeRegistry(ctx)
	return nil
}

// Destroy tears down every adapter record, releases the snapshot and
// unsubscribes and closes both proxies. It is a no-op on a manager that was
// never created or is already destroyed.
func (m *Manager) Destroy(ctx context.Context) {
	if m == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if m.state == StateDestroyed && m.registry.Len() == 0 {
		return
	}
	startedAt := time.Now()
	removed := 0
	var firstErr error
	for _, record := range m.registry.All() {
		if err := m.lifecycle.RemoveAdapter(ctx, m.registry, record); err != nil {
			firstErr = firstError(firstErr, err)
			m.logWarn(ctx, "adapter teardown failed", map[string]any{"adapter": record.Name, "error": err.Error()})
			continue
		}
		removed++
	}

	if m.managerProxy == nil && m.objectManager == nil && m.state == StateUninitialized {
		return
	}

	m.snapshot = Snapshot{}
	m.disconnect(ctx)
	m.state = StateDestroyed
	m.observeOperation(ctx, startedAt, opDestroy, firstErr, map[string]any{"adapters": removed})
}

// disconnect cancels every subscription and releases both proxies. Adapter
// records are left in place.
func (m *Manager) disconnect(ctx context.Context) {
	for _, sub := range m.subscriptions {
		if sub == nil {
			continue
		}
		if err := sub.Unsubscribe(); err != nil {
			m.logWarn(ctx, "unsubscribe failed", map[string]any{"error": err.Error()})
		}
	}
	m.subscriptions = nil
	m.closeManagerProxy(ctx)
	if m.objectManager != nil {
		if err := m.objectManager.Close(); err != nil {
			m.logWarn(ctx, "object manager proxy close failed", map[string]any{"error": err.Error()})
		}
		m.objectManager = nil
	}
}

func (m *Manager) closeManagerProxy(ctx context.Context) {
	if m.managerProxy == nil {
		return
	}
	if err := m.managerProxy.Close(); err != nil {
		m.logWarn(ctx, "manager proxy close failed", map[string]any{"error": err.Error()})
	}
	m.managerProxy = nil
}

func (m *Manager) FindAdapterByName(name string) (AdapterRecord, error) {
	if m == nil {
		return AdapterRecord{}, InvalidParameterError("manager", "manager is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return AdapterRecord{}, InvalidParameterError("name", "adapter name is required")
	}
	record, ok := m.registry.FindByName(name)
	if !ok {
		return AdapterRecord{}, NotFoundError(name)
	}
	return record, nil
}

func (m *Manager) FindAdapterByProxy(handleID string) (AdapterRecord, error) {
	if m == nil {
		return AdapterRecord{}, InvalidParameterError("manager", "manager is required")
	}
	handleID = strings.TrimSpace(handleID)
	if handleID == "" {
		return AdapterRecord{}, InvalidParameterError("proxy", "adapter proxy handle id is required")
	}
	record, ok := m.registry.FindByProxy(handleID)
	if !ok {
		return AdapterRecord{}, NotFoundError(handleID)
	}
	return record, nil
}

// Adapters returns the tracked adapters in insertion order.
func (m *Manager) Adapters() []AdapterRecord {
	if m == nil {
		return nil
	}
	return m.registry.All()
}

// RegisterAdapterRemovedObserver replaces the removal observer. A nil
// callback clears it.
func (m *Manager) RegisterAdapterRemovedObserver(observer AdapterRemovedObserver, token any) {
	if m == nil {
		return
	}
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.removedObserver = observer
	m.removedToken = token
}

// RegisterAdapterErrorObserver replaces the observer notified when an
// AdapterAdded notification cannot be turned into a record.
func (m *Manager) RegisterAdapterErrorObserver(observer AdapterErrorObserver, token any) {
	if m == nil {
		return
	}
	m.observersMu.Lock()
	defer m.observersMu.Unlock()
	m.errorObserver = observer
	m.errorToken = token
}

func (m *Manager) notifyAdapterRemoved(name string) {
	m.observersMu.RLock()
	observer, token := m.removedObserver, m.removedToken
	m.observersMu.RUnlock()
	if observer != nil {
		observer(name, token)
	}
}

func (m *Manager) notifyAdapterError(name string, err error) {
	m.observersMu.RLock()
	observer, token := m.errorObserver, m.errorToken
	m.observersMu.RUnlock()
	if observer != nil {
		observer(name, err, token)
	}
}

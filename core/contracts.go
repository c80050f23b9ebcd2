package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// SignalKind names one of the remote notifications the router subscribes to.
type SignalKind string

const (
	SignalPropertyChanged   SignalKind = "PropertyChanged"
	SignalAdapterAdded      SignalKind = "AdapterAdded"
	SignalAdapterRemoved    SignalKind = "AdapterRemoved"
	SignalInterfacesAdded   SignalKind = "InterfacesAdded"
	SignalInterfacesRemoved SignalKind = "InterfacesRemoved"
)

// ManagerSignals are delivered by the manager proxy.
var ManagerSignals = []SignalKind{
	SignalPropertyChanged,
	SignalAdapterAdded,
	SignalAdapterRemoved,
}

// ObjectManagerSignals are delivered by the object-manager proxy.
var ObjectManagerSignals = []SignalKind{
	SignalInterfacesAdded,
	SignalInterfacesRemoved,
}

// Event is a decoded remote notification.
type Event interface {
	Type() string
}

// SignalHandler receives decoded notifications from a proxy. Transports call
// handlers from a single goroutine, one event at a time.
type SignalHandler func(ctx context.Context, event Event)

type Subscription interface {
	Unsubscribe() error
}

type ManagerProxy interface {
	Path() string
	Subscribe(kind SignalKind, handler SignalHandler) (Subscription, error)
	Close() error
}

type ObjectManagerProxy interface {
	Path() string
	GetManagedObjects(ctx context.Context) ([]ManagedObject, error)
	Subscribe(kind SignalKind, handler SignalHandler) (Subscription, error)
	Close() error
}

// AdapterProxy is the local stand-in for one remote adapter object. HandleID
// is stable for the lifetime of the proxy and unique across live proxies.
type AdapterProxy interface {
	HandleID() string
	Path() string
	Close() error
}

// Connector acquires proxies on an already established transport.
type Connector interface {
	NewManagerProxy(ctx context.Context, service string, path string) (ManagerProxy, error)
	NewObjectManagerProxy(ctx context.Context, service string, path string) (ObjectManagerProxy, error)
	NewAdapterProxy(ctx context.Context, service string, path string) (AdapterProxy, error)
}

// AdapterLifecycle is the only mutator of the registry on behalf of the
// manager and the router.
type AdapterLifecycle interface {
	AddAdapter(ctx context.Context, registry *AdapterRegistry, name string) error
	RemoveAdapter(ctx context.Context, registry *AdapterRegistry, record AdapterRecord) error
}

// ManagedObject is one entry of a GetManagedObjects reply.
type ManagedObject struct {
	Path       string
	Interfaces map[string]map[string]any
}

// Snapshot is the immutable result of one enumeration.
type Snapshot struct {
	Objects []ManagedObject
	TakenAt time.Time
}

func (s Snapshot) IsZero() bool {
	return s.TakenAt.IsZero() && len(s.Objects) == 0
}

// AdapterRemovedObserver is invoked once per confirmed removal, before the
// record is torn down.
type AdapterRemovedObserver func(name string, token any)

// AdapterErrorObserver is invoked when a reactive adapter creation fails.
type AdapterErrorObserver func(name string, err error, token any)

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

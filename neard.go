package neard

import (
	"context"

	"github.com/goliatone/go-neard/core"
)

type Config = core.Config

type Option = core.Option

type Manager = core.Manager

type State = core.State

type Connector = core.Connector
type ManagerProxy = core.ManagerProxy
type ObjectManagerProxy = core.ObjectManagerProxy
type AdapterProxy = core.AdapterProxy
type AdapterLifecycle = core.AdapterLifecycle

type AdapterRecord = core.AdapterRecord
type AdapterRegistry = core.AdapterRegistry
type Snapshot = core.Snapshot
type ManagedObject = core.ManagedObject

type AdapterRemovedObserver = core.AdapterRemovedObserver
type AdapterErrorObserver = core.AdapterErrorObserver

var (
	WithLogger           = core.WithLogger
	WithLoggerProvider   = core.WithLoggerProvider
	WithMetricsRecorder  = core.WithMetricsRecorder
	WithErrorMapper      = core.WithErrorMapper
	WithConfigProvider   = core.WithConfigProvider
	WithOptionsResolver  = core.WithOptionsResolver
	WithAdapterLifecycle = core.WithAdapterLifecycle
	WithAdapterRegistry  = core.WithAdapterRegistry
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewManager(cfg Config, connector Connector, opts ...Option) (*Manager, error) {
	return core.NewManager(cfg, connector, opts...)
}

// Setup builds a manager and runs its bootstrap.
func Setup(ctx context.Context, cfg Config, connector Connector, opts ...Option) (*Manager, error) {
	return core.Setup(ctx, cfg, connector, opts...)
}

package core

import (
	"context"
	"strings"
)

// ProxyAdapterLifecycle creates adapter proxies through a Connector and keeps
// the registry in step with them.
type ProxyAdapterLifecycle struct {
	Connector Connector
	Service   string
}

func NewProxyAdapterLifecycle(connector Connector, service string) *ProxyAdapterLifecycle {
	return &ProxyAdapterLifecycle{Connector: connector, Service: service}
}

func (l *ProxyAdapterLifecycle) AddAdapter(ctx context.Context, registry *AdapterRegistry, name string) error {
	if l == nil || l.Connector == nil {
		return AdapterCreationError(nil, name)
	}
	if registry == nil {
		return InvalidParameterError("registry", "adapter registry is required")
	}
	if strings.TrimSpace(name) == "" {
		return InvalidParameterError("name", "adapter name is required")
	}

	proxy, err := l.Connector.NewAdapterProxy(ctx, l.Service, name)
	if err != nil {
		return AdapterCreationError(err, name)
	}
	if _, err := registry.Insert(name, proxy); err != nil {
		_ = proxy.Close()
		return err
	}
	return nil
}

func (l *ProxyAdapterLifecycle) RemoveAdapter(_ context.Context, registry *AdapterRegistry, record AdapterRecord) error {
	if registry == nil {
		return InvalidParameterError("registry", "adapter registry is required")
	}
	if err := registry.Remove(record); err != nil {
		return err
	}
	if record.Proxy == nil {
		return nil
	}
	return record.Proxy.Close()
}

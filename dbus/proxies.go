package dbus

import (
	"context"
	"fmt"
	"sync"

	godbus "github.com/godbus/dbus/v5"
	"github.com/goliatone/go-neard/core"
)

type remoteProxy struct {
	connector *Connector
	id        string
	service   string
	path      godbus.ObjectPath
	object    godbus.BusObject

	mu     sync.Mutex
	closed bool
}

func (p *remoteProxy) Path() string { return string(p.path) }

// HandleID identifies the proxy for the lifetime of the process.
func (p *remoteProxy) HandleID() string { return p.id }

func (p *remoteProxy) Subscribe(kind core.SignalKind, handler core.SignalHandler) (core.Subscription, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("dbus: proxy %s is closed", p.path)
	}
	return p.connector.subscribe(p, kind, handler)
}

// Close cancels any subscription still attached to the proxy.
func (p *remoteProxy) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.connector.release(p)
}

type ManagerProxy struct {
	*remoteProxy
}

func (p *ManagerProxy) Subscribe(kind core.SignalKind, handler core.SignalHandler) (core.Subscription, error) {
	if iface, err := signalInterface(kind); err != nil || iface != ManagerInterface {
		return nil, fmt.Errorf("dbus: manager does not emit %s", kind)
	}
	return p.remoteProxy.Subscribe(kind, handler)
}

type ObjectManagerProxy struct {
	*remoteProxy
}

func (p *ObjectManagerProxy) Subscribe(kind core.SignalKind, handler core.SignalHandler) (core.Subscription, error) {
	if iface, err := signalInterface(kind); err != nil || iface != ObjectManagerInterface {
		return nil, fmt.Errorf("dbus: object manager does not emit %s", kind)
	}
	return p.remoteProxy.Subscribe(kind, handler)
}

func (p *ObjectManagerProxy) GetManagedObjects(ctx context.Context) ([]core.ManagedObject, error) {
	reply := map[godbus.ObjectPath]map[string]map[string]godbus.Variant{}
	if err := p.object.CallWithContext(ctx, getManagedObjectsMethod, 0).Store(&reply); err != nil {
		return nil, fmt.Errorf("dbus: %s: %w", getManagedObjectsMethod, err)
	}
	return decodeManagedObjects(reply), nil
}

// AdapterProxy is a thin handle on an org.neard.Adapter object.
type AdapterProxy struct {
	id     string
	path   string
	object godbus.BusObject

	mu     sync.Mutex
	closed bool
}

func (p *AdapterProxy) HandleID() string { return p.id }

func (p *AdapterProxy) Path() string { return p.path }

// Object exposes the bus object for adapter level calls.
func (p *AdapterProxy) Object() godbus.BusObject { return p.object }

func (p *AdapterProxy) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *AdapterProxy) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

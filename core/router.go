package core

import (
	"context"
	"strings"
	"time"
)

// SignalRouter maps remote notifications onto registry mutations. Adapter
// membership follows the manager's AdapterAdded/AdapterRemoved signals only;
// the object manager's InterfacesAdded/InterfacesRemoved describe the same
// topology changes and are logged without touching the registry, so an adapter
// is never created twice for one remote change.
type SignalRouter struct {
	manager *Manager
}

func newSignalRouter(manager *Manager) *SignalRouter {
	return &SignalRouter{manager: manager}
}

// Subscribe registers the router on every manager and object-manager signal.
// Subscriptions that succeed are returned even when another one fails.
func (r *SignalRouter) Subscribe(manager ManagerProxy, objectManager ObjectManagerProxy) ([]Subscription, error) {
	subs := make([]Subscription, 0, len(ManagerSignals)+len(ObjectManagerSignals))
	var firstErr error
	if manager != nil {
		for _, kind := range ManagerSignals {
			sub, err := manager.Subscribe(kind, r.handle)
			if err != nil {
				firstErr = firstError(firstErr, SubscriptionError(err, kind))
				continue
			}
			r.manager.logDebug(context.Background(), "registered manager signal", map[string]any{"signal": string(kind)})
			subs = append(subs, sub)
		}
	}
	if objectManager != nil {
		for _, kind := range ObjectManagerSignals {
			sub, err := objectManager.Subscribe(kind, r.handle)
			if err != nil {
				firstErr = firstError(firstErr, SubscriptionError(err, kind))
				continue
			}
			r.manager.logDebug(context.Background(), "registered object manager signal", map[string]any{"signal": string(kind)})
			subs = append(subs, sub)
		}
	}
	return subs, firstErr
}

func (r *SignalRouter) handle(ctx context.Context, event Event) {
	r.Dispatch(ctx, event)
}

// Dispatch runs the reaction for one event. Reaction errors are logged and
// swallowed: there is no caller on the event loop to report them to.
func (r *SignalRouter) Dispatch(ctx context.Context, event Event) {
	if r == nil || event == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := r.Route(ctx, event)
	r.manager.observeSignal(ctx, event, err)
	if err != nil {
		r.manager.logWarn(ctx, "signal reaction failed", map[string]any{
			"signal": event.Type(),
			"error":  err.Error(),
		})
	}
}

// Route runs the reaction for one event and returns its error.
func (r *SignalRouter) Route(ctx context.Context, event Event) error {
	if validator, ok := event.(interface{ Validate() error }); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}
	switch e := event.(type) {
	case PropertyChanged:
		return r.HandlePropertyChanged(ctx, e)
	case AdapterAdded:
		return r.HandleAdapterAdded(ctx, e)
	case AdapterRemoved:
		return r.HandleAdapterRemoved(ctx, e)
	case InterfacesAdded:
		return r.HandleInterfacesAdded(ctx, e)
	case InterfacesRemoved:
		return r.HandleInterfacesRemoved(ctx, e)
	default:
		return InvalidParameterError("event", "unsupported event type "+event.Type())
	}
}

// HandlePropertyChanged only logs. The Adapters property is ignored.
func (r *SignalRouter) HandlePropertyChanged(ctx context.Context, event PropertyChanged) error {
	r.manager.logDebug(ctx, "manager property changed", map[string]any{
		"property": event.Key,
		"value":    event.Value,
	})
	return nil
}

func (r *SignalRouter) HandleAdapterAdded(ctx context.Context, event AdapterAdded) error {
	m := r.manager
	name := strings.TrimSpace(event.Name)
	if _, exists := m.registry.FindByName(name); exists {
		m.logDebug(ctx, "adapter already tracked", map[string]any{"adapter": name})
		return nil
	}
	if err := m.addAdapter(ctx, name, "signal"); err != nil {
		m.notifyAdapterError(name, err)
		return err
	}
	return nil
}

// HandleAdapterRemoved notifies the removal observer while the record is
// still findable, then tears the record down.
func (r *SignalRouter) HandleAdapterRemoved(ctx context.Context, event AdapterRemoved) error {
	m := r.manager
	name := strings.TrimSpace(event.Name)
	record, ok := m.registry.FindByName(name)
	if !ok {
		m.logWarn(ctx, "adapter not found", map[string]any{"adapter": name})
		return NotFoundError(name)
	}

	m.notifyAdapterRemoved(name)

	startedAt := time.Now()
	err := m.lifecycle.RemoveAdapter(ctx, m.registry, record)
	m.observeOperation(ctx, startedAt, opAdapterRemove, err, map[string]any{"adapter": name, "source": "signal"})
	if err != nil {
		return err
	}
	m.observeRegistry(ctx)
	return nil
}

func (r *SignalRouter) HandleInterfacesAdded(ctx context.Context, event InterfacesAdded) error {
	r.manager.logDebug(ctx, "interfaces added", map[string]any{
		"path":       event.Path,
		"interfaces": interfaceNames(event.Interfaces),
	})
	return nil
}

func (r *SignalRouter) HandleInterfacesRemoved(ctx context.Context, event InterfacesRemoved) error {
	r.manager.logDebug(ctx, "interfaces removed", map[string]any{
		"path":       event.Path,
		"interfaces": event.Interfaces,
	})
	return nil
}

func firstError(current error, next error) error {
	if current != nil {
		return current
	}
	return next
}

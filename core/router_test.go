package core

import (
	"context"
	"errors"
	"testing"
)

func readyManager(t *testing.T, connector *fakeConnector, opts ...Option) *Manager {
	t.Helper()
	m, err := newTestManager(connector, opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	if err := m.Create(context.Background()); err != nil {
		t.Fatalf("create: %v", err)
	}
	return m
}

func TestSignalRouter_ReactiveAdd(t *testing.T) {
	connector := &fakeConnector{}
	m := readyManager(t, connector)
	if len(m.Adapters()) != 0 {
		t.Fatalf("expected no bootstrap adapters")
	}

	connector.lastManager().emit(SignalAdapterAdded, AdapterAdded{Name: "/org/svc/nfc0"})

	record, err := m.FindAdapterByName("/org/svc/nfc0")
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	byProxy, err := m.FindAdapterByProxy(record.HandleID())
	if err != nil {
		t.Fatalf("find by proxy: %v", err)
	}
	if byProxy.Name != record.Name {
		t.Fatalf("expected same record, got %q and %q", byProxy.Name, record.Name)
	}
	if len(m.Adapters()) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(m.Adapters()))
	}
}

func TestSignalRouter_DuplicateAddKeepsOneRecord(t *testing.T) {
	connector := &fakeConnector{objects: managedObjects("/org/svc/nfc0")}
	m := readyManager(t, connector)

	for i := 0; i < 3; i++ {
		connector.lastManager().emit(SignalAdapterAdded, AdapterAdded{Name: "/org/svc/nfc0"})
	}
	if len(m.Adapters()) != 1 {
		t.Fatalf("expected one record, got %d", len(m.Adapters()))
	}
	if len(connector.adapters) != 1 {
		t.Fatalf("expected one adapter proxy to be created, got %d", len(connector.adapters))
	}
}

func TestSignalRouter_RemoveNotifiesObserverBeforeTeardown(t *testing.T) {
	connector := &fakeConnector{objects: managedObjects("/org/svc/nfc0", "/org/svc/nfc1")}
	m := readyManager(t, connector)

	calls := 0
	m.RegisterAdapterRemovedObserver(func(name string, token any) {
		calls++
		if name != "/org/svc/nfc1" {
			t.Fatalf("unexpected observer name %q", name)
		}
		if token != "user-data" {
			t.Fatalf("unexpected observer token %v", token)
		}
		if _, err := m.FindAdapterByName(name); err != nil {
			t.Fatalf("expected record to be findable inside observer: %v", err)
		}
	}, "user-data")

	connector.lastManager().emit(SignalAdapterRemoved, AdapterRemoved{Name: "/org/svc/nfc1"})

	if calls != 1 {
		t.Fatalf("expected one observer call, got %d", calls)
	}
	if _, err := m.FindAdapterByName("/org/svc/nfc1"); !IsNotFound(err) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
	if _, err := m.FindAdapterByName("/org/svc/nfc0"); err != nil {
		t.Fatalf("expected sibling adapter to survive: %v", err)
	}
	if !connector.adapters[1].closed {
		t.Fatalf("expected removed adapter proxy to be closed")
	}
}

func TestSignalRouter_UnknownRemovalIsIgnored(t *testing.T) {
	connector := &fakeConnector{objects: managedObjects("/org/svc/nfc0")}
	m := readyManager(t, connector)

	calls := 0
	m.RegisterAdapterRemovedObserver(func(string, any) { calls++ }, nil)

	connector.lastManager().emit(SignalAdapterRemoved, AdapterRemoved{Name: "/org/svc/nfc9"})

	if calls != 0 {
		t.Fatalf("expected no observer call, got %d", calls)
	}
	if len(m.Adapters()) != 1 {
		t.Fatalf("expected tracked adapter to survive")
	}
	if err := m.Router().Route(context.Background(), AdapterRemoved{Name: "/org/svc/nfc9"}); !IsNotFound(err) {
		t.Fatalf("expected not found from route, got %v", err)
	}
}

func TestSignalRouter_AddFailureNotifiesErrorObserver(t *testing.T) {
	cause := errors.New("adapter proxy refused")
	connector := &fakeConnector{adapterErr: map[string]error{"/org/svc/nfc0": cause}}
	m := readyManager(t, connector)

	var gotName string
	var gotErr error
	m.RegisterAdapterErrorObserver(func(name string, err error, token any) {
		gotName = name
		gotErr = err
		if token != 42 {
			t.Fatalf("unexpected token %v", token)
		}
	}, 42)

	connector.lastManager().emit(SignalAdapterAdded, AdapterAdded{Name: "/org/svc/nfc0"})

	if gotName != "/org/svc/nfc0" || !IsAdapterCreation(gotErr) {
		t.Fatalf("expected adapter creation error for nfc0, got %q %v", gotName, gotErr)
	}
	if len(m.Adapters()) != 0 {
		t.Fatalf("expected no record after failed creation")
	}
}

func TestSignalRouter_InterfaceSignalsDoNotMutateRegistry(t *testing.T) {
	connector := &fakeConnector{}
	m := readyManager(t, connector)
	om := connector.lastObjectManager()

	om.emit(SignalInterfacesAdded, InterfacesAdded{
		Path:       "/org/svc/nfc0",
		Interfaces: map[string]map[string]any{"org.neard.Adapter": {}},
	})
	if len(m.Adapters()) != 0 {
		t.Fatalf("expected interfaces-added to leave the registry untouched")
	}

	connector.lastManager().emit(SignalAdapterAdded, AdapterAdded{Name: "/org/svc/nfc0"})
	om.emit(SignalInterfacesRemoved, InterfacesRemoved{Path: "/org/svc/nfc0", Interfaces: []string{"org.neard.Adapter"}})
	if len(m.Adapters()) != 1 {
		t.Fatalf("expected interfaces-removed to leave the registry untouched")
	}
}

func TestSignalRouter_PropertyChangedOnlyLogs(t *testing.T) {
	logger := newCaptureLogger()
	connector := &fakeConnector{}
	m := readyManager(t, connector, WithLogger(logger))

	connector.lastManager().emit(SignalPropertyChanged, PropertyChanged{Key: "Adapters", Value: []string{"/org/svc/nfc0"}})

	if len(m.Adapters()) != 0 {
		t.Fatalf("expected Adapters property to be ignored")
	}
	if !hasLog(logger.snapshot(), "debug", "manager property changed") {
		t.Fatalf("expected property change log")
	}
}

func TestSignalRouter_RejectsInvalidEvents(t *testing.T) {
	m := readyManager(t, &fakeConnector{})
	if err := m.Router().Route(context.Background(), AdapterAdded{}); !IsInvalidParameter(err) {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
	m.Router().Dispatch(context.Background(), AdapterAdded{})
	if len(m.Adapters()) != 0 {
		t.Fatalf("expected no record for invalid event")
	}
}

func TestSignalRouter_UniquenessAcrossSequences(t *testing.T) {
	connector := &fakeConnector{}
	m := readyManager(t, connector)
	mp := connector.lastManager()

	sequence := []Event{
		AdapterAdded{Name: "/org/svc/nfc0"},
		AdapterAdded{Name: "/org/svc/nfc1"},
		AdapterRemoved{Name: "/org/svc/nfc0"},
		AdapterAdded{Name: "/org/svc/nfc0"},
		AdapterAdded{Name: "/org/svc/nfc1"},
		AdapterRemoved{Name: "/org/svc/nfc2"},
		AdapterAdded{Name: "/org/svc/nfc0"},
	}
	for _, event := range sequence {
		kind := SignalAdapterAdded
		if _, ok := event.(AdapterRemoved); ok {
			kind = SignalAdapterRemoved
		}
		mp.emit(kind, event)
	}

	names := map[string]int{}
	handles := map[string]int{}
	for _, record := range m.Adapters() {
		names[record.Name]++
		handles[record.HandleID()]++
	}
	for name, count := range names {
		if count != 1 {
			t.Fatalf("expected one record for %s, got %d", name, count)
		}
	}
	for handle, count := range handles {
		if count != 1 {
			t.Fatalf("expected one record for handle %s, got %d", handle, count)
		}
	}
	if len(names) != 2 {
		t.Fatalf("expected two tracked adapters, got %v", names)
	}
}

// racingLifecycle inserts a record for the adapter before delegating, as a
// concurrent add of the same name would.
type racingLifecycle struct {
	inner *ProxyAdapterLifecycle
}

func (l *racingLifecycle) AddAdapter(ctx context.Context, registry *AdapterRegistry, name string) error {
	if _, err := registry.Insert(name, &fakeAdapterProxy{id: "winner-" + name, path: name}); err != nil {
		return err
	}
	return l.inner.AddAdapter(ctx, registry, name)
}

func (l *racingLifecycle) RemoveAdapter(ctx context.Context, registry *AdapterRegistry, record AdapterRecord) error {
	return l.inner.RemoveAdapter(ctx, registry, record)
}

func TestSignalRouter_LostInsertRaceIsNotAFailure(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	connector := &fakeConnector{}
	lifecycle := &racingLifecycle{inner: NewProxyAdapterLifecycle(connector, "org.svc")}
	m := readyManager(t, connector, WithAdapterLifecycle(lifecycle), WithMetricsRecorder(metrics))

	notified := 0
	m.RegisterAdapterErrorObserver(func(string, error, any) { notified++ }, nil)

	if err := m.Router().Route(context.Background(), AdapterAdded{Name: "/org/svc/nfc0"}); err != nil {
		t.Fatalf("expected lost race to be treated as success, got %v", err)
	}
	if notified != 0 {
		t.Fatalf("expected no error observer call for a tracked adapter")
	}
	record, err := m.FindAdapterByName("/org/svc/nfc0")
	if err != nil {
		t.Fatalf("find adapter: %v", err)
	}
	if record.HandleID() != "winner-/org/svc/nfc0" {
		t.Fatalf("expected the winning record to be kept, got %q", record.HandleID())
	}
	if len(connector.adapters) != 1 || !connector.adapters[0].closed {
		t.Fatalf("expected the losing proxy to be closed")
	}
	if !hasCounter(metrics.counters, "neard.adapter_add.total", "success") {
		t.Fatalf("expected adapter_add to be counted as success")
	}
}

func TestSignalRouter_InterfacesRemovedLogsNames(t *testing.T) {
	logger := newCaptureLogger()
	connector := &fakeConnector{}
	readyManager(t, connector, WithLogger(logger))

	connector.lastObjectManager().emit(SignalInterfacesRemoved, InterfacesRemoved{
		Path:       "/org/svc/nfc0",
		Interfaces: []string{"org.neard.Adapter", "org.freedesktop.DBus.Properties"},
	})

	for _, record := range logger.snapshot() {
		if record.msg != "interfaces removed" {
			continue
		}
		names, ok := record.fields["interfaces"].([]string)
		if !ok || len(names) != 2 || names[0] != "org.neard.Adapter" {
			t.Fatalf("expected interface names as a list, got %#v", record.fields["interfaces"])
		}
		return
	}
	t.Fatalf("expected interfaces removed log")
}

func TestSignalRouter_DispatchCountsSignals(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	connector := &fakeConnector{}
	m := readyManager(t, connector, WithMetricsRecorder(metrics))

	m.Router().Dispatch(context.Background(), AdapterAdded{Name: "/org/svc/nfc0"})
	m.Router().Dispatch(context.Background(), AdapterRemoved{Name: "/org/svc/nfc9"})

	var added, missing bool
	for _, counter := range metrics.counters {
		if counter.name != "neard.signal.total" {
			continue
		}
		switch counter.tags["signal"] {
		case EventAdapterAdded:
			added = counter.tags["status"] == "success"
		case EventAdapterRemoved:
			missing = counter.tags["status"] == "failure" && counter.tags["error_code"] == ErrorAdapterNotFound
		}
	}
	if !added || !missing {
		t.Fatalf("expected per-signal counters, got %#v", metrics.counters)
	}
}

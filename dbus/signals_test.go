package dbus

import (
	"testing"

	godbus "github.com/godbus/dbus/v5"
	"github.com/goliatone/go-neard/core"
)

func TestDecodeSignal_ManagerSignals(t *testing.T) {
	event, err := decodeSignal(core.SignalAdapterAdded, []any{godbus.ObjectPath("/org/neard/nfc0")})
	if err != nil {
		t.Fatalf("decode adapter added: %v", err)
	}
	if added, ok := event.(core.AdapterAdded); !ok || added.Name != "/org/neard/nfc0" {
		t.Fatalf("unexpected event %#v", event)
	}

	event, err = decodeSignal(core.SignalAdapterRemoved, []any{godbus.ObjectPath("/org/neard/nfc1")})
	if err != nil {
		t.Fatalf("decode adapter removed: %v", err)
	}
	if removed, ok := event.(core.AdapterRemoved); !ok || removed.Name != "/org/neard/nfc1" {
		t.Fatalf("unexpected event %#v", event)
	}

	event, err = decodeSignal(core.SignalPropertyChanged, []any{"Adapters", godbus.MakeVariant([]godbus.ObjectPath{"/org/neard/nfc0"})})
	if err != nil {
		t.Fatalf("decode property changed: %v", err)
	}
	changed, ok := event.(core.PropertyChanged)
	if !ok || changed.Key != "Adapters" {
		t.Fatalf("unexpected event %#v", event)
	}
	if _, ok := changed.Value.([]godbus.ObjectPath); !ok {
		t.Fatalf("expected variant to be unwrapped, got %T", changed.Value)
	}
}

func TestDecodeSignal_ObjectManagerSignals(t *testing.T) {
	event, err := decodeSignal(core.SignalInterfacesAdded, []any{
		godbus.ObjectPath("/org/neard/nfc0"),
		map[string]map[string]godbus.Variant{
			AdapterInterface: {"Powered": godbus.MakeVariant(true)},
		},
	})
	if err != nil {
		t.Fatalf("decode interfaces added: %v", err)
	}
	added, ok := event.(core.InterfacesAdded)
	if !ok || added.Path != "/org/neard/nfc0" {
		t.Fatalf("unexpected event %#v", event)
	}
	if added.Interfaces[AdapterInterface]["Powered"] != true {
		t.Fatalf("expected decoded property, got %#v", added.Interfaces)
	}

	event, err = decodeSignal(core.SignalInterfacesRemoved, []any{
		godbus.ObjectPath("/org/neard/nfc0"),
		[]string{AdapterInterface},
	})
	if err != nil {
		t.Fatalf("decode interfaces removed: %v", err)
	}
	if removed, ok := event.(core.InterfacesRemoved); !ok || len(removed.Interfaces) != 1 {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestDecodeSignal_Malformed(t *testing.T) {
	cases := []struct {
		name string
		kind core.SignalKind
		body []any
	}{
		{"empty adapter added", core.SignalAdapterAdded, nil},
		{"bad path type", core.SignalAdapterRemoved, []any{42}},
		{"invalid path", core.SignalAdapterAdded, []any{godbus.ObjectPath("not/a/path")}},
		{"short property", core.SignalPropertyChanged, []any{"Adapters"}},
		{"bad interfaces", core.SignalInterfacesAdded, []any{godbus.ObjectPath("/x"), "nope"}},
		{"unknown", core.SignalKind("Bogus"), []any{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := decodeSignal(tc.kind, tc.body); err == nil {
				t.Fatalf("expected decode error")
			}
		})
	}
}

func TestDecodeManagedObjects_SortedByPath(t *testing.T) {
	reply := map[godbus.ObjectPath]map[string]map[string]godbus.Variant{
		"/org/neard/nfc1": {AdapterInterface: {"Mode": godbus.MakeVariant("Idle")}},
		"/":               {ManagerInterface: {}},
		"/org/neard/nfc0": {AdapterInterface: {"Mode": godbus.MakeVariant("Initiator")}},
	}
	objects := decodeManagedObjects(reply)
	want := []string{"/", "/org/neard/nfc0", "/org/neard/nfc1"}
	if len(objects) != len(want) {
		t.Fatalf("expected %d objects, got %d", len(want), len(objects))
	}
	for idx := range want {
		if objects[idx].Path != want[idx] {
			t.Fatalf("unexpected order at %d: got %s want %s", idx, objects[idx].Path, want[idx])
		}
	}
	if objects[1].Interfaces[AdapterInterface]["Mode"] != "Initiator" {
		t.Fatalf("expected unwrapped property, got %#v", objects[1].Interfaces)
	}
}

package dbus

import (
	"fmt"
	"sort"

	godbus "github.com/godbus/dbus/v5"
	"github.com/goliatone/go-neard/core"
)

const (
	ManagerInterface       = "org.neard.Manager"
	AdapterInterface       = "org.neard.Adapter"
	ObjectManagerInterface = "org.freedesktop.DBus.ObjectManager"

	getManagedObjectsMethod = ObjectManagerInterface + ".GetManagedObjects"
	nameHasOwnerMethod      = "org.freedesktop.DBus.NameHasOwner"
)

func signalInterface(kind core.SignalKind) (string, error) {
	switch kind {
	case core.SignalPropertyChanged, core.SignalAdapterAdded, core.SignalAdapterRemoved:
		return ManagerInterface, nil
	case core.SignalInterfacesAdded, core.SignalInterfacesRemoved:
		return ObjectManagerInterface, nil
	default:
		return "", fmt.Errorf("dbus: unsupported signal %q", kind)
	}
}

// decodeSignal turns a raw signal body into a core event.
func decodeSignal(kind core.SignalKind, body []any) (core.Event, error) {
	switch kind {
	case core.SignalPropertyChanged:
		if len(body) < 2 {
			return nil, fmt.Errorf("dbus: %s expects 2 arguments, got %d", kind, len(body))
		}
		key, ok := body[0].(string)
		if !ok {
			return nil, fmt.Errorf("dbus: %s property name has type %T", kind, body[0])
		}
		return core.PropertyChanged{Key: key, Value: variantValue(body[1])}, nil
	case core.SignalAdapterAdded, core.SignalAdapterRemoved:
		if len(body) < 1 {
			return nil, fmt.Errorf("dbus: %s expects 1 argument, got 0", kind)
		}
		path, err := objectPath(body[0])
		if err != nil {
			return nil, fmt.Errorf("dbus: %s: %w", kind, err)
		}
		if kind == core.SignalAdapterAdded {
			return core.AdapterAdded{Name: path}, nil
		}
		return core.AdapterRemoved{Name: path}, nil
	case core.SignalInterfacesAdded:
		if len(body) < 2 {
			return nil, fmt.Errorf("dbus: %s expects 2 arguments, got %d", kind, len(body))
		}
		path, err := objectPath(body[0])
		if err != nil {
			return nil, fmt.Errorf("dbus: %s: %w", kind, err)
		}
		ifaces, ok := body[1].(map[string]map[string]godbus.Variant)
		if !ok {
			return nil, fmt.Errorf("dbus: %s interfaces have type %T", kind, body[1])
		}
		return core.InterfacesAdded{Path: path, Interfaces: decodeInterfaces(ifaces)}, nil
	case core.SignalInterfacesRemoved:
		if len(body) < 2 {
			return nil, fmt.Errorf("dbus: %s expects 2 arguments, got %d", kind, len(body))
		}
		path, err := objectPath(body[0])
		if err != nil {
			return nil, fmt.Errorf("dbus: %s: %w", kind, err)
		}
		ifaces, ok := body[1].([]string)
		if !ok {
			return nil, fmt.Errorf("dbus: %s interfaces have type %T", kind, body[1])
		}
		return core.InterfacesRemoved{Path: path, Interfaces: append([]string(nil), ifaces...)}, nil
	default:
		return nil, fmt.Errorf("dbus: unsupported signal %q", kind)
	}
}

// decodeManagedObjects flattens a GetManagedObjects reply. The reply is a
// dictionary, so paths are sorted to give callers a stable order.
func decodeManagedObjects(reply map[godbus.ObjectPath]map[string]map[string]godbus.Variant) []core.ManagedObject {
	paths := make([]string, 0, len(reply))
	for path := range reply {
		paths = append(paths, string(path))
	}
	sort.Strings(paths)
	out := make([]core.ManagedObject, 0, len(paths))
	for _, path := range paths {
		out = append(out, core.ManagedObject{
			Path:       path,
			Interfaces: decodeInterfaces(reply[godbus.ObjectPath(path)]),
		})
	}
	return out
}

func decodeInterfaces(ifaces map[string]map[string]godbus.Variant) map[string]map[string]any {
	out := make(map[string]map[string]any, len(ifaces))
	for name, props := range ifaces {
		values := make(map[string]any, len(props))
		for key, value := range props {
			values[key] = value.Value()
		}
		out[name] = values
	}
	return out
}

func objectPath(value any) (string, error) {
	switch v := value.(type) {
	case godbus.ObjectPath:
		if !v.IsValid() {
			return "", fmt.Errorf("invalid object path %q", string(v))
		}
		return string(v), nil
	case string:
		if !godbus.ObjectPath(v).IsValid() {
			return "", fmt.Errorf("invalid object path %q", v)
		}
		return v, nil
	default:
		return "", fmt.Errorf("object path has type %T", value)
	}
}

func variantValue(value any) any {
	if variant, ok := value.(godbus.Variant); ok {
		return variant.Value()
	}
	return value
}

package core

import (
	"context"
	"time"
)

// EnumerateAdapters lists the adapters currently exported by the remote side.
// Paths keep the order the object manager returned them in. A failed call
// yields an enumeration error and a zero snapshot; it is not retried.
func EnumerateAdapters(
	ctx context.Context,
	om ObjectManagerProxy,
	filter func(string) bool,
) ([]string, Snapshot, error) {
	if om == nil {
		return nil, Snapshot{}, InvalidParameterError("object_manager", "object manager proxy is required")
	}
	if filter == nil {
		filter = IsAdapterPath
	}

	objects, err := om.GetManagedObjects(ctx)
	if err != nil {
		return nil, Snapshot{}, EnumerationError(err)
	}

	snapshot := Snapshot{
		Objects: cloneManagedObjects(objects),
		TakenAt: time.Now().UTC(),
	}
	names := make([]string, 0, len(objects))
	for _, object := range objects {
		if filter(object.Path) {
			names = append(names, object.Path)
		}
	}
	return names, snapshot, nil
}

func cloneManagedObjects(objects []ManagedObject) []ManagedObject {
	if len(objects) == 0 {
		return []ManagedObject{}
	}
	out := make([]ManagedObject, 0, len(objects))
	for _, object := range objects {
		ifaces := make(map[string]map[string]any, len(object.Interfaces))
		for name, props := range object.Interfaces {
			copied := make(map[string]any, len(props))
			for key, value := range props {
				copied[key] = value
			}
			ifaces[name] = copied
		}
		out = append(out, ManagedObject{Path: object.Path, Interfaces: ifaces})
	}
	return out
}

package core

import (
	"sort"
	"strings"
)

const (
	EventPropertyChanged   = "neard.manager.property_changed"
	EventAdapterAdded      = "neard.manager.adapter_added"
	EventAdapterRemoved    = "neard.manager.adapter_removed"
	EventInterfacesAdded   = "neard.object_manager.interfaces_added"
	EventInterfacesRemoved = "neard.object_manager.interfaces_removed"
)

type PropertyChanged struct {
	Key   string
	Value any
}

func (PropertyChanged) Type() string { return EventPropertyChanged }

func (e PropertyChanged) Validate() error {
	if strings.TrimSpace(e.Key) == "" {
		return InvalidParameterError("key", "property name is required")
	}
	return nil
}

type AdapterAdded struct {
	Name string
}

func (AdapterAdded) Type() string { return EventAdapterAdded }

func (e AdapterAdded) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return InvalidParameterError("name", "adapter name is required")
	}
	return nil
}

type AdapterRemoved struct {
	Name string
}

func (AdapterRemoved) Type() string { return EventAdapterRemoved }

func (e AdapterRemoved) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return InvalidParameterError("name", "adapter name is required")
	}
	return nil
}

type InterfacesAdded struct {
	Path       string
	Interfaces map[string]map[string]any
}

func (InterfacesAdded) Type() string { return EventInterfacesAdded }

func (e InterfacesAdded) Validate() error {
	if strings.TrimSpace(e.Path) == "" {
		return InvalidParameterError("path", "object path is required")
	}
	return nil
}

type InterfacesRemoved struct {
	Path       string
	Interfaces []string
}

func (InterfacesRemoved) Type() string { return EventInterfacesRemoved }

func (e InterfacesRemoved) Validate() error {
	if strings.TrimSpace(e.Path) == "" {
		return InvalidParameterError("path", "object path is required")
	}
	return nil
}

func interfaceNames(ifaces map[string]map[string]any) []string {
	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

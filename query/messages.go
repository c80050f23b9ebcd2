package query

import (
	"strings"
)

const (
	TypeFindAdapterByName  = "neard.query.adapter.find_by_name"
	TypeFindAdapterByProxy = "neard.query.adapter.find_by_proxy"
	TypeListAdapters       = "neard.query.adapter.list"
	TypeGetSnapshot        = "neard.query.snapshot.get"
)

type FindAdapterByNameMessage struct {
	Name string
}

func (FindAdapterByNameMessage) Type() string { return TypeFindAdapterByName }

func (m FindAdapterByNameMessage) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return queryValidationError("name", "adapter name is required")
	}
	return nil
}

type FindAdapterByProxyMessage struct {
	HandleID string
}

func (FindAdapterByProxyMessage) Type() string { return TypeFindAdapterByProxy }

func (m FindAdapterByProxyMessage) Validate() error {
	if strings.TrimSpace(m.HandleID) == "" {
		return queryValidationError("handle_id", "proxy handle id is required")
	}
	return nil
}

// ListAdaptersMessage lists tracked adapters in insertion order. A non empty
// PathPrefix narrows the result.
type ListAdaptersMessage struct {
	PathPrefix string
}

func (ListAdaptersMessage) Type() string { return TypeListAdapters }

func (m ListAdaptersMessage) Validate() error {
	prefix := strings.TrimSpace(m.PathPrefix)
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		return queryValidationError("path_prefix", "path prefix must be absolute")
	}
	return nil
}

type GetSnapshotMessage struct{}

func (GetSnapshotMessage) Type() string { return TypeGetSnapshot }

package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-neard/core"
)

type AdapterReader interface {
	FindAdapterByName(name string) (core.AdapterRecord, error)
	FindAdapterByProxy(handleID string) (core.AdapterRecord, error)
	Adapters() []core.AdapterRecord
}

type SnapshotReader interface {
	Snapshot() core.Snapshot
}

type FindAdapterByNameQuery struct {
	reader AdapterReader
}

func NewFindAdapterByNameQuery(reader AdapterReader) *FindAdapterByNameQuery {
	return &FindAdapterByNameQuery{reader: reader}
}

func (q *FindAdapterByNameQuery) Query(_ context.Context, msg FindAdapterByNameMessage) (core.AdapterRecord, error) {
	if q == nil || q.reader == nil {
		return core.AdapterRecord{}, queryDependencyError("query: adapter reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.AdapterRecord{}, err
	}
	return q.reader.FindAdapterByName(msg.Name)
}

type FindAdapterByProxyQuery struct {
	reader AdapterReader
}

func NewFindAdapterByProxyQuery(reader AdapterReader) *FindAdapterByProxyQuery {
	return &FindAdapterByProxyQuery{reader: reader}
}

func (q *FindAdapterByProxyQuery) Query(_ context.Context, msg FindAdapterByProxyMessage) (core.AdapterRecord, error) {
	if q == nil || q.reader == nil {
		return core.AdapterRecord{}, queryDependencyError("query: adapter reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.AdapterRecord{}, err
	}
	return q.reader.FindAdapterByProxy(msg.HandleID)
}

type ListAdaptersQuery struct {
	reader AdapterReader
}

func NewListAdaptersQuery(reader AdapterReader) *ListAdaptersQuery {
	return &ListAdaptersQuery{reader: reader}
}

func (q *ListAdaptersQuery) Query(_ context.Context, msg ListAdaptersMessage) ([]core.AdapterRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: adapter reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	records := q.reader.Adapters()
	prefix := strings.TrimSpace(msg.PathPrefix)
	if prefix == "" {
		return records, nil
	}
	matches := core.AdapterPathFilter(prefix)
	out := make([]core.AdapterRecord, 0, len(records))
	for _, record := range records {
		if matches(record.Name) {
			out = append(out, record)
		}
	}
	return out, nil
}

type GetSnapshotQuery struct {
	reader SnapshotReader
}

func NewGetSnapshotQuery(reader SnapshotReader) *GetSnapshotQuery {
	return &GetSnapshotQuery{reader: reader}
}

func (q *GetSnapshotQuery) Query(_ context.Context, _ GetSnapshotMessage) (core.Snapshot, error) {
	if q == nil || q.reader == nil {
		return core.Snapshot{}, queryDependencyError("query: snapshot reader is required")
	}
	return q.reader.Snapshot(), nil
}

package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-neard/core"
)

var (
	_ gocmd.Querier[FindAdapterByNameMessage, core.AdapterRecord]  = (*FindAdapterByNameQuery)(nil)
	_ gocmd.Querier[FindAdapterByProxyMessage, core.AdapterRecord] = (*FindAdapterByProxyQuery)(nil)
	_ gocmd.Querier[ListAdaptersMessage, []core.AdapterRecord]     = (*ListAdaptersQuery)(nil)
	_ gocmd.Querier[GetSnapshotMessage, core.Snapshot]             = (*GetSnapshotQuery)(nil)

	_ AdapterReader  = (*core.Manager)(nil)
	_ SnapshotReader = (*core.Manager)(nil)
)

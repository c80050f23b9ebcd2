package neard

import (
	"fmt"

	"github.com/goliatone/go-neard/adapters/gocommand"
	neardcommand "github.com/goliatone/go-neard/command"
	"github.com/goliatone/go-neard/core"
	neardquery "github.com/goliatone/go-neard/query"
)

type CommandQueryService interface {
	neardcommand.ManagerLifecycle
	neardquery.AdapterReader
	neardquery.SnapshotReader
}

type Commands struct {
	Create         *neardcommand.CreateManagerCommand
	Destroy        *neardcommand.DestroyManagerCommand
	DispatchSignal *neardcommand.DispatchSignalCommand
}

type Queries struct {
	FindAdapterByName  *neardquery.FindAdapterByNameQuery
	FindAdapterByProxy *neardquery.FindAdapterByProxyQuery
	ListAdapters       *neardquery.ListAdaptersQuery
	GetSnapshot        *neardquery.GetSnapshotQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	router neardcommand.EventRouter
}

func WithEventRouter(router neardcommand.EventRouter) FacadeOption {
	return func(options *facadeOptions) {
		options.router = router
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("neard: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	router := cfg.router
	if router == nil {
		router = resolveEventRouter(service)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		Create:         neardcommand.NewCreateManagerCommand(service),
		Destroy:        neardcommand.NewDestroyManagerCommand(service),
		DispatchSignal: neardcommand.NewDispatchSignalCommand(router),
	}
	facade.queries = Queries{
		FindAdapterByName:  neardquery.NewFindAdapterByNameQuery(service),
		FindAdapterByProxy: neardquery.NewFindAdapterByProxyQuery(service),
		ListAdapters:       neardquery.NewListAdaptersQuery(service),
		GetSnapshot:        neardquery.NewGetSnapshotQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// Register subscribes every command and query handler on bus. Handlers
// registered before a failure stay registered; bus.Close releases them.
func (f *Facade) Register(bus *gocommand.Bus) error {
	if f == nil {
		return fmt.Errorf("neard: facade is required")
	}
	if err := gocommand.RegisterCommand[neardcommand.CreateManagerMessage](bus, f.commands.Create); err != nil {
		return err
	}
	if err := gocommand.RegisterCommand[neardcommand.DestroyManagerMessage](bus, f.commands.Destroy); err != nil {
		return err
	}
	if err := gocommand.RegisterCommand[neardcommand.DispatchSignalMessage](bus, f.commands.DispatchSignal); err != nil {
		return err
	}
	if err := gocommand.RegisterQuery[neardquery.FindAdapterByNameMessage, core.AdapterRecord](bus, f.queries.FindAdapterByName); err != nil {
		return err
	}
	if err := gocommand.RegisterQuery[neardquery.FindAdapterByProxyMessage, core.AdapterRecord](bus, f.queries.FindAdapterByProxy); err != nil {
		return err
	}
	if err := gocommand.RegisterQuery[neardquery.ListAdaptersMessage, []core.AdapterRecord](bus, f.queries.ListAdapters); err != nil {
		return err
	}
	return gocommand.RegisterQuery[neardquery.GetSnapshotMessage, core.Snapshot](bus, f.queries.GetSnapshot)
}

func resolveEventRouter(service CommandQueryService) neardcommand.EventRouter {
	if router, ok := service.(neardcommand.EventRouter); ok {
		return router
	}
	provider, ok := service.(interface {
		Router() *core.SignalRouter
	})
	if !ok {
		return nil
	}
	router := provider.Router()
	if router == nil {
		return nil
	}
	return router
}

package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-neard/core"
)

type ManagerLifecycle interface {
	Create(ctx context.Context) error
	Destroy(ctx context.Context)
	State() core.State
}

type EventRouter interface {
	Route(ctx context.Context, event core.Event) error
}

type CreateManagerCommand struct {
	manager ManagerLifecycle
}

func NewCreateManagerCommand(manager ManagerLifecycle) *CreateManagerCommand {
	return &CreateManagerCommand{manager: manager}
}

// Execute stores the resulting state even when bootstrap reports an error,
// a partially populated manager is still usable.
func (c *CreateManagerCommand) Execute(ctx context.Context, _ CreateManagerMessage) error {
	if c == nil || c.manager == nil {
		return commandDependencyError("command: manager is required")
	}
	err := c.manager.Create(ctx)
	storeResult(ctx, c.manager.State())
	return err
}

type DestroyManagerCommand struct {
	manager ManagerLifecycle
}

func NewDestroyManagerCommand(manager ManagerLifecycle) *DestroyManagerCommand {
	return &DestroyManagerCommand{manager: manager}
}

func (c *DestroyManagerCommand) Execute(ctx context.Context, _ DestroyManagerMessage) error {
	if c == nil || c.manager == nil {
		return commandDependencyError("command: manager is required")
	}
	c.manager.Destroy(ctx)
	storeResult(ctx, c.manager.State())
	return nil
}

type DispatchSignalCommand struct {
	router EventRouter
}

func NewDispatchSignalCommand(router EventRouter) *DispatchSignalCommand {
	return &DispatchSignalCommand{router: router}
}

func (c *DispatchSignalCommand) Execute(ctx context.Context, msg DispatchSignalMessage) error {
	if c == nil || c.router == nil {
		return commandDependencyError("command: signal router is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.router.Route(ctx, msg.Event)
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

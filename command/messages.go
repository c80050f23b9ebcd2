package command

import (
	"github.com/goliatone/go-neard/core"
)

const (
	TypeCreateManager  = "neard.command.manager.create"
	TypeDestroyManager = "neard.command.manager.destroy"
	TypeDispatchSignal = "neard.command.signal.dispatch"
)

// CreateManagerMessage binds the proxies and bootstraps the adapter list.
type CreateManagerMessage struct{}

func (CreateManagerMessage) Type() string { return TypeCreateManager }

type DestroyManagerMessage struct{}

func (DestroyManagerMessage) Type() string { return TypeDestroyManager }

// DispatchSignalMessage feeds a decoded remote notification through the
// router, for transports that do not call the router directly.
type DispatchSignalMessage struct {
	Event core.Event
}

func (DispatchSignalMessage) Type() string { return TypeDispatchSignal }

func (m DispatchSignalMessage) Validate() error {
	if m.Event == nil {
		return commandValidationError("event", "event is required")
	}
	validator, ok := m.Event.(interface{ Validate() error })
	if !ok {
		return nil
	}
	return commandWrapValidation(validator.Validate(), "command: invalid signal event")
}

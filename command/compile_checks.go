package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-neard/core"
)

var (
	_ gocmd.Commander[CreateManagerMessage]  = (*CreateManagerCommand)(nil)
	_ gocmd.Commander[DestroyManagerMessage] = (*DestroyManagerCommand)(nil)
	_ gocmd.Commander[DispatchSignalMessage] = (*DispatchSignalCommand)(nil)

	_ ManagerLifecycle = (*core.Manager)(nil)
	_ EventRouter      = (*core.SignalRouter)(nil)
)

package dbus

import (
	godbus "github.com/godbus/dbus/v5"
	"github.com/goliatone/go-neard/core"
)

var (
	_ core.Connector          = (*Connector)(nil)
	_ core.ManagerProxy       = (*ManagerProxy)(nil)
	_ core.ObjectManagerProxy = (*ObjectManagerProxy)(nil)
	_ core.AdapterProxy       = (*AdapterProxy)(nil)
	_ core.Subscription       = (*subscription)(nil)

	_ BusConn = (*godbus.Conn)(nil)
)

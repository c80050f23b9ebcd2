// Package dbus binds the core contracts to neard over the system bus using
// github.com/godbus/dbus/v5. One goroutine pumps incoming signals and calls
// subscribed handlers serially.
package dbus

// Package core keeps a local mirror of the neard manager and its adapters.
// It bootstraps from one GetManagedObjects call and then follows the
// manager's AdapterAdded/AdapterRemoved signals. Transports implement the
// Connector and proxy contracts; core must not depend on a transport package.
package core

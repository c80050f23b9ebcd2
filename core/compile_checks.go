package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ AdapterLifecycle = (*ProxyAdapterLifecycle)(nil)
	_ ConfigProvider   = (*CfgxConfigProvider)(nil)
	_ OptionsResolver  = GoOptionsResolver{}
	_ RawConfigLoader  = YAMLConfigLoader{}

	_ Event = PropertyChanged{}
	_ Event = AdapterAdded{}
	_ Event = AdapterRemoved{}
	_ Event = InterfacesAdded{}
	_ Event = InterfacesRemoved{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)

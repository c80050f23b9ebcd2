package core

import (
	"fmt"
	"strings"
)

type Config struct {
	ServiceName       string `koanf:"service_name" mapstructure:"service_name" yaml:"service_name"`
	BusName           string `koanf:"bus_name" mapstructure:"bus_name" yaml:"bus_name"`
	ManagerPath       string `koanf:"manager_path" mapstructure:"manager_path" yaml:"manager_path"`
	ObjectManagerPath string `koanf:"object_manager_path" mapstructure:"object_manager_path" yaml:"object_manager_path"`
	AdapterPathPrefix string `koanf:"adapter_path_prefix" mapstructure:"adapter_path_prefix" yaml:"adapter_path_prefix"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:       "neard",
		BusName:           "org.neard",
		ManagerPath:       "/",
		ObjectManagerPath: "/",
		AdapterPathPrefix: DefaultAdapterPathPrefix,
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.BusName) == "" {
		return fmt.Errorf("core: bus_name is required")
	}
	for field, path := range map[string]string{
		"manager_path":        c.ManagerPath,
		"object_manager_path": c.ObjectManagerPath,
		"adapter_path_prefix": c.AdapterPathPrefix,
	} {
		if !strings.HasPrefix(strings.TrimSpace(path), "/") {
			return fmt.Errorf("core: %s must be an absolute object path", field)
		}
	}
	return nil
}

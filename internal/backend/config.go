package backend

import (
	"fmt"

	"retailtracker/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type:         BackendType(appConfig.DataBackend),
		SQLiteDBPath: appConfig.SQLiteDBPath,
		Engine:       EngineType(appConfig.StatsEngine),
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}
	if cfg.Engine == "" {
		cfg.Engine = EngineAuto
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if !c.Engine.IsValid() {
		return fmt.Errorf("invalid stats engine: %s", c.Engine)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case MemoryBackend:
		if c.Engine == EnginePushdown {
			return fmt.Errorf("memory backend does not support the pushdown engine")
		}
	}
	return nil
}

// ResolvedEngine returns the engine actually used for c
func (c Config) ResolvedEngine() EngineType {
	if c.Engine != EngineAuto && c.Engine != "" {
		return c.Engine
	}
	if c.Type == SQLiteBackend {
		return EnginePushdown
	}
	return EngineScan
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

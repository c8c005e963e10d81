package backend

import (
	"context"

	"retailtracker/internal/dashboard"
	"retailtracker/internal/services"
	"retailtracker/internal/store"
)

// CleanupFunc releases resources held by a backend
type CleanupFunc func() error

// BackendResult bundles everything the server needs from one data backend
type BackendResult struct {
	Store store.EntryStore
	Stats dashboard.Engine
	// Publisher is nil when change events are disabled
	Publisher services.EventPublisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	Engine EngineType

	// Optional change events
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// EngineType selects how dashboard stats are computed
type EngineType string

const (
	// EngineAuto picks pushdown where the backend supports it
	EngineAuto     EngineType = "auto"
	EngineScan     EngineType = "scan"
	EnginePushdown EngineType = "pushdown"
)

// IsValid returns true if the engine type is valid
func (et EngineType) IsValid() bool {
	switch et {
	case EngineAuto, EngineScan, EnginePushdown:
		return true
	default:
		return false
	}
}

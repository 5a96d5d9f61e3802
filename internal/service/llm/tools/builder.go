package tools

import (
	"log/slog"
)

// ToolRegistryBuilder provides a fluent API for building tool registries.
type ToolRegistryBuilder struct {
	registry *ToolRegistry
	config   *ToolConfig
}

// NewToolRegistryBuilder creates a new builder with a fresh registry.
func NewToolRegistryBuilder(logger *slog.Logger) *ToolRegistryBuilder {
	return &ToolRegistryBuilder{
		registry: NewToolRegistry(logger),
		config:   DefaultToolConfig(),
	}
}

// WithConfig sets custom tool configuration.
// If not called, defaults will be used. Call before registering tools.
func (b *ToolRegistryBuilder) WithConfig(config *ToolConfig) *ToolRegistryBuilder {
	if config != nil {
		b.config = config
	}
	return b
}

// WithTrainingTools registers the six deterministic training tools.
func (b *ToolRegistryBuilder) WithTrainingTools() *ToolRegistryBuilder {
	b.registry.Register(VDOTTool{})
	b.registry.Register(RaceTimeTool{})
	b.registry.Register(TrainingPacesTool{})
	b.registry.Register(HRZonesTool{})
	b.registry.Register(NewMileageProgressionTool(b.config))
	b.registry.Register(ConvertPaceTool{})
	return b
}

// WithTool registers an additional executor.
func (b *ToolRegistryBuilder) WithTool(executor ToolExecutor) *ToolRegistryBuilder {
	if executor != nil {
		b.registry.Register(executor)
	}
	return b
}

// Build returns the constructed tool registry.
func (b *ToolRegistryBuilder) Build() *ToolRegistry {
	return b.registry
}

// BuildDefault is a convenience for NewToolRegistryBuilder(logger).WithTrainingTools().Build().
func BuildDefault(logger *slog.Logger) *ToolRegistry {
	return NewToolRegistryBuilder(logger).WithTrainingTools().Build()
}

package tools

// ToolConfig centralizes configuration for all tools.
type ToolConfig struct {
	// MaxProgressionWeeks bounds the series accepted by check_mileage_progression.
	MaxProgressionWeeks int
}

// DefaultToolConfig returns the default tool configuration.
func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		MaxProgressionWeeks: 104, // two years of weekly volumes
	}
}

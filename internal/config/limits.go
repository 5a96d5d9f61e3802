package config

import "time"

const (
	// DefaultMaxRounds is the number of model calls one agent session may make.
	DefaultMaxRounds = 10

	// MaxAgentRounds caps AGENT_MAX_ROUNDS.
	MaxAgentRounds = 50

	// DefaultMaxTokens is the per-call output token limit sent to the model.
	DefaultMaxTokens = 8192

	// DefaultRequestTimeout bounds a single model API call. Full plans are
	// long completions, so this is generous.
	DefaultRequestTimeout = 5 * time.Minute

	// DefaultModelCatalogTTL is how long a fetched model list is reused.
	DefaultModelCatalogTTL = time.Hour

	// DefaultSessionRetention is how long a finished generation stays queryable.
	DefaultSessionRetention = 30 * time.Minute

	// DefaultMaxProgressionWeeks limits the mileage progression tool input.
	DefaultMaxProgressionWeeks = 104

	// MaxPlanNameLength fits the VARCHAR(255) plan name column.
	MaxPlanNameLength = 255

	// MaxClarificationLength bounds a user's answer to a clarifying question.
	MaxClarificationLength = 4000

	// MaxRequestBodyBytes bounds JSON request bodies on the HTTP API.
	MaxRequestBodyBytes = 1 << 20
)

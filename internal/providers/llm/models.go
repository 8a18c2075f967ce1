package llm

// modelAliases maps the friendly names clients send to the identifiers the
// upstream endpoint understands. Unknown names pass through untouched.
var modelAliases = map[string]string{
	"gpt-3.5-turbo":  "deepseek-chat",
	"gpt-4":          "deepseek-chat",
	"gpt-4o":         "deepseek-chat",
	"gpt-4o-mini":    "deepseek-chat",
	"deepseek":       "deepseek-chat",
	"deepseek-r1":    "deepseek-reasoner",
	"reasoner":       "deepseek-reasoner",
}

// ResolveModel maps an alias to its upstream id. An empty requested model
// falls back to the configured default.
func ResolveModel(requested, fallback string) string {
	if requested == "" {
		return fallback
	}
	if id, ok := modelAliases[requested]; ok {
		return id
	}
	return requested
}

// KnownModels lists the alias table for the /v1/models endpoint.
func KnownModels() []string {
	names := make([]string, 0, len(modelAliases))
	for name := range modelAliases {
		names = append(names, name)
	}
	return names
}

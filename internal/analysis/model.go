package analysis

// Gemini model IDs known to handle multimodal frame description and long
// structured-output synthesis.
const (
	// ModelGemini25Pro is stable, for high-reasoning tasks.
	ModelGemini25Pro = "gemini-2.5-pro"

	// ModelGemini25Flash is stable, balanced performance.
	ModelGemini25Flash = "gemini-2.5-flash"

	// ModelGemini25FlashLite is for high-throughput, lowest cost.
	ModelGemini25FlashLite = "gemini-2.5-flash-lite"
)

// DefaultModelName is used when no model is configured. Flash is the right
// default here: one synthesis call per recording plus one description call
// per sampled frame adds up fast at Pro pricing.
const DefaultModelName = ModelGemini25Flash

// ResolveModelName returns the configured model, or DefaultModelName when
// the configuration leaves it empty.
func ResolveModelName(configured string) string {
	if configured != "" {
		return configured
	}
	return DefaultModelName
}

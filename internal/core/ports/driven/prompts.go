package driven

// PromptStore provides access to prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptDiagnosis is the system instruction for the diagnosis call.
	// This prompt has no format placeholders.
	PromptDiagnosis = "diagnosis"

	// PromptDistill extracts repair-relevant content from a page.
	// The template expects %s (equipment), %s (sentinel) and %s (page text).
	PromptDistill = "distill"

	// PromptGuideSynthesis is the system instruction for guide synthesis.
	// This prompt has no format placeholders.
	PromptGuideSynthesis = "guide_synthesis"

	// PromptWebFallback asks for a grounded summary when retrieved context is thin.
	// The template expects %s (equipment) and %s (fault description).
	PromptWebFallback = "web_fallback"

	// PromptSourceSearch asks a grounded model for documentation pages.
	// The template expects %s (search query) and %d (maximum results).
	PromptSourceSearch = "source_search"

	// PromptPartsSearch asks a grounded model where to buy a part.
	// The template expects %s (part), %s (equipment) and %s (location).
	PromptPartsSearch = "parts_search"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

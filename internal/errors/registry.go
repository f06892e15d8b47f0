package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E003, E006, E009)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Expression evaluation failed",
		Detail:   "The expression could not be parsed or evaluated. Its error text is used as the expression value.",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Root element changed during patch",
		Detail:   "Patching requires both trees to share the same root tag. Replacing the root element is not supported.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Patch on an unmounted tree",
		Detail:   "The previous tree has no bound element. Mount it before patching.",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Effect cascade too deep",
		Detail:   "Effects triggered each other beyond the configured depth. The innermost effect was dropped. Check for effects that write state they also read.",
	},
	"E009": {
		Category: CategoryRuntime,
		Message:  "Unregistered reactive dependency",
		Detail:   "A watcher names a dependency that was never registered with the application.",
	},

	// ============================================
	// Template Errors (E004-E005, E007)
	// ============================================

	"E004": {
		Category: CategoryTemplate,
		Message:  "Malformed loop binding",
		Detail:   `The data attribute of a t-for element must have the form "name in expression".`,
	},
	"E005": {
		Category: CategoryTemplate,
		Message:  "Loop collection is not iterable",
		Detail:   "The collection expression of a t-for element must evaluate to a list or tuple.",
	},
	"E007": {
		Category: CategoryTemplate,
		Message:  "Container has no template element",
		Detail:   "The mount container must hold exactly one template element as its first element child.",
	},

	// ============================================
	// Config Errors (E008)
	// ============================================

	"E008": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The project configuration failed validation.",
	},

	// ============================================
	// Publish & Protocol Errors (E010-E011)
	// ============================================

	"E010": {
		Category: CategoryPublish,
		Message:  "Snapshot publishing failed",
		Detail:   "The rendered document could not be written to the publish target.",
	},
	"E011": {
		Category: CategoryProtocol,
		Message:  "Malformed client message",
		Detail:   "The preview client sent a message that could not be decoded or routed.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

package errors

import "strings"

// CompileError is a diagnostic that aborts compilation of a unit.
type CompileError struct {
	Code        ErrorCode
	Message     string
	Location    Location
	Suggestions []string
}

// NewCompileError creates a CompileError at the given location.
func NewCompileError(code ErrorCode, message string, loc Location) *CompileError {
	return &CompileError{Code: code, Message: message, Location: loc}
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return Render(e.Message, e.Location)
}

// WithSuggestions attaches "did you mean" candidates.
func (e *CompileError) WithSuggestions(suggestions []string) *CompileError {
	e.Suggestions = suggestions
	return e
}

// FriendlyErrorMessage returns the error followed by the error code and any
// suggestions.
func (e *CompileError) FriendlyErrorMessage() string {
	var b strings.Builder
	b.WriteString("error[")
	b.WriteString(e.Code.String())
	b.WriteString("]: ")
	b.WriteString(e.Error())
	if hint := FormatSuggestions(e.Suggestions); hint != "" {
		b.WriteString("\n  hint: ")
		b.WriteString(hint)
	}
	return b.String()
}

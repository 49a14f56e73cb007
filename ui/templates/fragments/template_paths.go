// Package fragments provides template names for the HTMX partials
package fragments

// Template names as registered by the UI server
const (
	Groups = "groups.html"
	Result = "result.html"
	Error  = "error.html"
)

// All lists every fragment template
var All = []string{Groups, Result, Error}

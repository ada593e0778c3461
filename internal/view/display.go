// Package view holds the widget's display surface. The fetcher never touches
// output directly; it drives a Display handed to it by the front end.
package view

// Display is the set of view bindings the widget writes into.
type Display interface {
	// ShowLoading hides any previous result and shows a loading indicator.
	ShowLoading()
	// ShowSummary shows a weather result and clears any error.
	ShowSummary(s Summary) error
	// ShowError shows the single user-visible failure message.
	ShowError(message string) error
	// Notify shows a transient notice, such as falling back to the default city.
	Notify(message string)
}

// Discard is a Display that shows nothing. Callers that only need the
// returned Outcome, such as the JSON API, pass it to the fetcher.
var Discard Display = discard{}

type discard struct{}

func (discard) ShowLoading() {}
func (discard) ShowSummary(Summary) error { return nil }
func (discard) ShowError(string) error { return nil }
func (discard) Notify(string) {}

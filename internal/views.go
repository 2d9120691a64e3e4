package internal

import "fmt"

// Activation is the decision for one requested view
type Activation struct {
	View        View
	Allowed     bool
	Placeholder bool // render the "no document" state
	Refetch     bool // (re)trigger the data fetch for this view
	Err         error
}

// ViewPolicy decides whether a view may render and whether its data should
// be fetched, given the current document session
type ViewPolicy interface {
	Activate(view View, session DocumentSession) Activation
}

// NewViewPolicy returns the policy named by config
func NewViewPolicy(name string) (ViewPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return StrictPolicy{}, nil
	default:
		return nil, fmt.Errorf("unsupported view policy: %s (supported: permissive, strict)", name)
	}
}

// PermissivePolicy lets every result view render, showing a placeholder
// when no document was uploaded
type PermissivePolicy struct{}

// Activate implements ViewPolicy
func (PermissivePolicy) Activate(view View, session DocumentSession) Activation {
	a := Activation{View: view, Allowed: true}
	if view == ViewManual {
		return a
	}
	if !session.HasDocument() {
		a.Placeholder = true
		return a
	}
	a.Refetch = needsFetch(view, session)
	return a
}

// StrictPolicy blocks result views until a document was uploaded
type StrictPolicy struct{}

// Activate implements ViewPolicy
func (StrictPolicy) Activate(view View, session DocumentSession) Activation {
	a := Activation{View: view, Allowed: true}
	if view == ViewManual {
		return a
	}
	if !session.HasDocument() {
		a.Allowed = false
		a.Err = ErrNoDocument
		return a
	}
	a.Refetch = needsFetch(view, session)
	return a
}

// needsFetch is true for summary and extract views that have nothing
// loaded and nothing in flight
func needsFetch(view View, session DocumentSession) bool {
	if view != ViewSummary && view != ViewExtract {
		return false
	}
	switch session.State(view).Status {
	case StatusIdle, StatusFailed:
		return true
	default:
		return false
	}
}

// ParseView maps a command-line view name onto a View
func ParseView(name string) (View, error) {
	switch name {
	case "summary":
		return ViewSummary, nil
	case "extract", "extraction":
		return ViewExtract, nil
	case "chat":
		return ViewChat, nil
	case "manual", "help":
		return ViewManual, nil
	default:
		return "", fmt.Errorf("unknown view: %s (supported: summary, extract, chat, manual)", name)
	}
}

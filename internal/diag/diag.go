// Package diag defines the typed diagnostic kinds reported by the
// elaboration engine. All engine errors accumulate in an hcl.Diagnostics log
// rather than aborting; the kind travels in Diagnostic.Extra so callers can
// match failures without comparing message strings.
package diag

import "github.com/hashicorp/hcl/v2"

// Kind classifies an engine diagnostic.
type Kind int

const (
	// KindDuplicateDecl reports a second declaration of a template
	// identifier that is already present in the template container.
	KindDuplicateDecl Kind = iota + 1

	// KindNoRoot reports an attempt to evaluate an item before a root
	// instantiation exists.
	KindNoRoot

	// KindRootMismatch reports a root instantiation naming a template other
	// than the default declaration.
	KindRootMismatch

	// KindUnresolved reports a reference that did not resolve to any
	// declaration in scope.
	KindUnresolved

	// KindDuplicateInstance reports an instantiation whose hierarchical
	// identifier collides with a committed elaborated instance.
	KindDuplicateInstance

	// KindNonConstant reports a generate-construct control expression that
	// could not be evaluated to a compile-time constant of the right type.
	KindNonConstant

	// KindCheckFailed covers all other semantic-check failures.
	KindCheckFailed
)

// Error builds an error diagnostic of the given kind.
func Error(kind Kind, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Extra:    kind,
	}
}

// Warning builds a warning diagnostic of the given kind.
func Warning(kind Kind, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
		Extra:    kind,
	}
}

// KindOf reports the kind attached to a diagnostic, if any.
func KindOf(d *hcl.Diagnostic) (Kind, bool) {
	k, ok := d.Extra.(Kind)
	return k, ok
}

// HasKind reports whether any diagnostic in the log carries the given kind.
func HasKind(diags hcl.Diagnostics, kind Kind) bool {
	for _, d := range diags {
		if k, ok := KindOf(d); ok && k == kind {
			return true
		}
	}
	return false
}

// Soften downgrades every error diagnostic of the given kind to a warning.
// The local validation pass runs with unresolved-reference warnings enabled,
// where cross-module references are expected to be unresolvable.
func Soften(diags hcl.Diagnostics, kind Kind) hcl.Diagnostics {
	out := make(hcl.Diagnostics, 0, len(diags))
	for _, d := range diags {
		if k, ok := KindOf(d); ok && k == kind && d.Severity == hcl.DiagError {
			cp := *d
			cp.Severity = hcl.DiagWarning
			out = append(out, &cp)
			continue
		}
		out = append(out, d)
	}
	return out
}

// Package species maps species codes to the species groups that key the
// regression tables.
package species

import (
	"fmt"

	"github.com/timbermetrics/timbervol-go/internal/errors"
	"github.com/timbermetrics/timbervol-go/internal/refdata"
)

// ResolutionKind tags how a species code was classified.
type ResolutionKind int

const (
	// MatchedDirect means the code has an entry in the species-to-group map.
	MatchedDirect ResolutionKind = iota
	// FallbackSoftwood means the code was classified by softwood major group.
	FallbackSoftwood
	// FallbackHardwood means the code was classified by hardwood major group.
	FallbackHardwood
	// Unresolved means the code has no group mapping and no major-group
	// classification. Downstream lookups are impossible for such codes.
	Unresolved
)

func (k ResolutionKind) String() string {
	switch k {
	case MatchedDirect:
		return "direct"
	case FallbackSoftwood:
		return "fallback-softwood"
	case FallbackHardwood:
		return "fallback-hardwood"
	case Unresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("ResolutionKind(%d)", int(k))
	}
}

// Resolution is the outcome of classifying one species code.
type Resolution struct {
	Code  int
	Group refdata.SpeciesGroup
	Kind  ResolutionKind
}

// UnresolvedError reports every species code in a batch that could not be
// classified. Any unresolved code is a hard error: every downstream
// coefficient lookup depends on a valid group.
type UnresolvedError struct {
	Codes []int
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved species codes: %v", e.Codes)
}

// ErrorCategory marks the error for category-based handling.
func (e *UnresolvedError) ErrorCategory() errors.ErrorCategory {
	return errors.CategorySpeciesResolution
}

// Resolver classifies species codes against a reference data store.
type Resolver struct {
	store *refdata.Store
}

// NewResolver returns a resolver backed by store.
func NewResolver(store *refdata.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve classifies a single species code: a direct mapping wins, otherwise
// the code's major group decides between the two fallback groups, otherwise
// the code is unresolved.
func (r *Resolver) Resolve(code int) Resolution {
	if group, ok := r.store.DirectGroup(code); ok {
		return Resolution{Code: code, Group: group, Kind: MatchedDirect}
	}
	info, ok := r.store.Species(code)
	if !ok {
		return Resolution{Code: code, Kind: Unresolved}
	}
	if info.Softwood() {
		return Resolution{Code: code, Group: refdata.GroupOtherSoftwoods, Kind: FallbackSoftwood}
	}
	return Resolution{Code: code, Group: refdata.GroupOtherHardwoods, Kind: FallbackHardwood}
}

// ResolveAll classifies a batch of codes, preserving order. If any code is
// unresolved the whole batch fails with an UnresolvedError enumerating every
// offending code; no partial result is returned.
func (r *Resolver) ResolveAll(codes []int) ([]refdata.SpeciesGroup, error) {
	groups := make([]refdata.SpeciesGroup, len(codes))
	var unresolved []int
	for i, code := range codes {
		res := r.Resolve(code)
		if res.Kind == Unresolved {
			unresolved = append(unresolved, code)
			continue
		}
		groups[i] = res.Group
	}
	if len(unresolved) > 0 {
		return nil, &UnresolvedError{Codes: unresolved}
	}
	return groups, nil
}

// Resolutions classifies a batch of codes and reports the full per-code
// outcome, including unresolved entries. Used for diagnostics output.
func (r *Resolver) Resolutions(codes []int) []Resolution {
	resolutions := make([]Resolution, len(codes))
	for i, code := range codes {
		resolutions[i] = r.Resolve(code)
	}
	return resolutions
}

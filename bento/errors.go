package bento

import (
	"fmt"
	"strings"

	"github.com/warp/bentobox/generic"
)

// DuplicateAtomError reports an id already present in its catalog.
type DuplicateAtomError struct {
	Kind AtomKind
	ID   string
}

func (e *DuplicateAtomError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.ID)
}

func (e *DuplicateAtomError) Unwrap() error {
	return generic.ErrDuplicateAtom
}

// TemplateValidationError lists the parts a template is missing.
// Error() is phrased for the person using the composer.
type TemplateValidationError struct {
	Missing []string
	Reason  string
}

func (e *TemplateValidationError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return "template cannot be saved without " + joinParts(e.Missing)
}

func (e *TemplateValidationError) Unwrap() error {
	return generic.ErrInvalidTemplate
}

// NotFoundError names the kind of record that did not resolve.
type NotFoundError struct {
	What string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.What, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return generic.ErrNotFound
}

func notFound(what, id string) error {
	return &NotFoundError{What: what, ID: id}
}

func joinParts(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

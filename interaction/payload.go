/*
payload.go - Drag payload codec

PURPOSE:
  Drag sources serialize what they carry into a string that crosses the
  drag boundary. DecodePayload turns that string back into a typed variant
  before anything dispatches on it; nothing downstream sees raw JSON.

WIRE FORMAT:
  {"type":"pool-template","templateId":"..."}
  {"type":"scheduled-encounter","encounterId":"..."}
  {"type":"client-group","clientGroupId":"..."}
  bare atoms {"type":"staff|activity|client|client-group|location|duration","id":...}

  "client-group" is both a wrapper type and an atom kind. A payload with a
  clientGroupId is the wrapper; without one it is a bare client-group atom.

SEE ALSO:
  - drag.go: Dispatch on the decoded variant
*/
package interaction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/bentobox/bento"
	"github.com/warp/bentobox/generic"
)

// PayloadKind is the discriminant of a drag payload.
type PayloadKind string

const (
	PayloadPoolTemplate PayloadKind = "pool-template"
	PayloadEncounter    PayloadKind = "scheduled-encounter"
	PayloadClientGroup  PayloadKind = "client-group"
	// PayloadAtom is a bare library atom dragged toward the composer.
	PayloadAtom PayloadKind = "atom"
)

// Payload is one of PoolTemplatePayload, EncounterPayload,
// ClientGroupPayload or AtomPayload.
type Payload interface {
	Kind() PayloadKind
	isPayload()
}

type PoolTemplatePayload struct {
	TemplateID string
}

type EncounterPayload struct {
	EncounterID string
}

type ClientGroupPayload struct {
	ClientGroupID string
}

type AtomPayload struct {
	Atom bento.Atom
}

func (PoolTemplatePayload) Kind() PayloadKind { return PayloadPoolTemplate }
func (EncounterPayload) Kind() PayloadKind    { return PayloadEncounter }
func (ClientGroupPayload) Kind() PayloadKind  { return PayloadClientGroup }
func (AtomPayload) Kind() PayloadKind         { return PayloadAtom }

func (PoolTemplatePayload) isPayload() {}
func (EncounterPayload) isPayload()    {}
func (ClientGroupPayload) isPayload()  {}
func (AtomPayload) isPayload()         {}

// PayloadError describes a drag payload that could not be decoded.
type PayloadError struct {
	Raw    string
	Reason string
}

func (e *PayloadError) Error() string {
	raw := e.Raw
	if len(raw) > 64 {
		raw = raw[:64] + "..."
	}
	return fmt.Sprintf("invalid drag payload %q: %s", raw, e.Reason)
}

func (e *PayloadError) Unwrap() error {
	return generic.ErrInvalidPayload
}

// envelope is the union of every wire field.
type envelope struct {
	Type          string `json:"type"`
	TemplateID    string `json:"templateId,omitempty"`
	EncounterID   string `json:"encounterId,omitempty"`
	ClientGroupID string `json:"clientGroupId,omitempty"`
}

// DecodePayload parses a serialized drag payload.
func DecodePayload(raw string) (Payload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &PayloadError{Raw: raw, Reason: "empty"}
	}
	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, &PayloadError{Raw: raw, Reason: err.Error()}
	}

	switch {
	case env.Type == string(PayloadPoolTemplate):
		if env.TemplateID == "" {
			return nil, &PayloadError{Raw: raw, Reason: "missing templateId"}
		}
		return PoolTemplatePayload{TemplateID: env.TemplateID}, nil
	case env.Type == string(PayloadEncounter):
		if env.EncounterID == "" {
			return nil, &PayloadError{Raw: raw, Reason: "missing encounterId"}
		}
		return EncounterPayload{EncounterID: env.EncounterID}, nil
	case env.Type == string(PayloadClientGroup) && env.ClientGroupID != "":
		return ClientGroupPayload{ClientGroupID: env.ClientGroupID}, nil
	case bento.AtomKind(env.Type).IsValid():
		var a bento.Atom
		if err := json.Unmarshal([]byte(trimmed), &a); err != nil {
			return nil, &PayloadError{Raw: raw, Reason: err.Error()}
		}
		if a.ID == "" {
			return nil, &PayloadError{Raw: raw, Reason: "atom without id"}
		}
		return AtomPayload{Atom: a}, nil
	case env.Type == "":
		return nil, &PayloadError{Raw: raw, Reason: "missing type"}
	default:
		return nil, &PayloadError{Raw: raw, Reason: fmt.Sprintf("unknown type %q", env.Type)}
	}
}

// EncodePayload serializes p for the drag boundary.
func EncodePayload(p Payload) (string, error) {
	var v any
	switch p := p.(type) {
	case PoolTemplatePayload:
		v = envelope{Type: string(PayloadPoolTemplate), TemplateID: p.TemplateID}
	case EncounterPayload:
		v = envelope{Type: string(PayloadEncounter), EncounterID: p.EncounterID}
	case ClientGroupPayload:
		v = envelope{Type: string(PayloadClientGroup), ClientGroupID: p.ClientGroupID}
	case AtomPayload:
		v = p.Atom
	default:
		return "", fmt.Errorf("%w: unsupported payload %T", generic.ErrInvalidPayload, p)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

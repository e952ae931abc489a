package callout

import (
	"net/http"
	"strings"
)

// Verb is the closed set of HTTP verbs a callout may use.
type Verb string

const (
	GET    Verb = http.MethodGet
	POST   Verb = http.MethodPost
	PATCH  Verb = http.MethodPatch
	PUT    Verb = http.MethodPut
	HEAD   Verb = http.MethodHead
	DELETE Verb = http.MethodDelete
)

// Verbs lists every supported verb.
func Verbs() []Verb {
	return []Verb{GET, POST, PATCH, PUT, HEAD, DELETE}
}

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	switch v {
	case GET, POST, PATCH, PUT, HEAD, DELETE:
		return true
	}
	return false
}

// carriesBody reports whether requests with this verb may have a body.
func (v Verb) carriesBody() bool {
	return v == POST || v == PUT || v == PATCH
}

func (v Verb) String() string {
	return string(v)
}

// ParseVerb converts a case-insensitive method name into a Verb.
func ParseVerb(s string) (Verb, bool) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	return v, v.Valid()
}

// PatchPolicy controls how PATCH requests reach the wire.
type PatchPolicy int

const (
	// PatchOverride sends PATCH as POST and appends the method override
	// marker to the query. Endpoints configured for the override convention
	// rely on this.
	PatchOverride PatchPolicy = iota
	// PatchNative sends PATCH as-is.
	PatchNative
)

// MethodOverrideMarker is appended to the encoded query under PatchOverride.
const MethodOverrideMarker = "?_HttpMethod=PATCH"

func (p PatchPolicy) String() string {
	if p == PatchNative {
		return "native"
	}
	return "override"
}

// ParsePatchPolicy accepts "override" or "native" (case-insensitive).
func ParsePatchPolicy(s string) (PatchPolicy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "override":
		return PatchOverride, true
	case "native":
		return PatchNative, true
	}
	return PatchOverride, false
}

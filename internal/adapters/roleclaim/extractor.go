package roleclaim

// Package roleclaim extracts the role claim from a decoded token payload.
// Identity providers disagree about where custom attributes live
// ("custom:role", nested claim objects, group arrays), so the lookup is a
// configurable JMESPath expression rather than a hard-coded key.

import (
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/beaconworks/kb-chat-api/internal/domain/auth"
)

// Extractor evaluates a JMESPath expression against token claims.
type Extractor struct {
	expression string
}

// New validates the expression. The default for provider custom attributes
// is the quoted identifier `"custom:role"`.
func New(expression string) (*Extractor, error) {
	if _, err := jmespath.Compile(expression); err != nil {
		return nil, fmt.Errorf("compile role claim expression %q: %w", expression, err)
	}
	return &Extractor{expression: expression}, nil
}

// Extract returns the raw role claim value, or "" when the claim is absent
// or not a string. Absence is not an error: the policy layer treats it as
// no role, which denies every gated resource.
func (e *Extractor) Extract(claims domainauth.Claims) string {
	if e == nil || e.expression == "" || claims == nil {
		return ""
	}
	v, err := jmespath.Search(e.expression, map[string]any(claims))
	if err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

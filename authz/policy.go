package authz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/forohub/auth"
)

var (
	// ErrUnauthorized means the route needs an identity and the request has none.
	ErrUnauthorized = errors.New("authz: authentication required")
	// ErrForbidden means the identity lacks the role the route requires.
	ErrForbidden = errors.New("authz: insufficient role")
)

type requirementKind uint8

const (
	kindAuthenticated requirementKind = iota
	kindPublic
	kindRole
)

// Requirement is what a rule demands of the caller.
// The zero value requires authentication.
type Requirement struct {
	kind requirementKind
	role string
}

// Public lets any request through, identified or not.
func Public() Requirement { return Requirement{kind: kindPublic} }

// Authenticated requires an identity.
func Authenticated() Requirement { return Requirement{kind: kindAuthenticated} }

// Role requires an identity holding role.
func Role(role string) Requirement { return Requirement{kind: kindRole, role: role} }

// IsPublic reports whether r admits anonymous requests.
func (r Requirement) IsPublic() bool { return r.kind == kindPublic }

// RoleName returns the required role, or "" for non-role requirements.
func (r Requirement) RoleName() string { return r.role }

func (r Requirement) String() string {
	switch r.kind {
	case kindPublic:
		return "public"
	case kindRole:
		return "role:" + r.role
	default:
		return "authenticated"
	}
}

// Check returns nil if identity satisfies r. A nil identity is anonymous.
func (r Requirement) Check(identity *auth.Identity) error {
	switch r.kind {
	case kindPublic:
		return nil
	case kindRole:
		if identity == nil {
			return ErrUnauthorized
		}
		if !identity.HasRole(r.role) {
			return ErrForbidden
		}
		return nil
	default:
		if identity == nil {
			return ErrUnauthorized
		}
		return nil
	}
}

// Rule binds a method and path pattern to a requirement.
// An empty Method matches every method.
type Rule struct {
	Method      string
	Pattern     string
	Requirement Requirement
}

type compiledRule struct {
	Rule
	segments []string
}

// Policy is an immutable, ordered rule table. Safe for concurrent use.
type Policy struct {
	rules []compiledRule
}

// Compile builds a Policy, rejecting malformed patterns.
func Compile(rules ...Rule) (*Policy, error) {
	p := &Policy{rules: make([]compiledRule, 0, len(rules))}
	for i, r := range rules {
		segs, err := compilePattern(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("authz: rule %d (%s %s): %w", i, r.Method, r.Pattern, err)
		}
		r.Method = strings.ToUpper(r.Method)
		p.rules = append(p.rules, compiledRule{Rule: r, segments: segs})
	}
	return p, nil
}

// NewPolicy is like Compile but panics on a malformed pattern. Rule tables
// are fixed at startup, so a bad pattern is a programming error.
func NewPolicy(rules ...Rule) *Policy {
	p, err := Compile(rules...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match returns the requirement of the first rule matching method and path.
func (p *Policy) Match(method, path string) (Requirement, bool) {
	method = strings.ToUpper(method)
	parts := splitPath(path)
	for _, r := range p.rules {
		if r.Method != "" && r.Method != method {
			continue
		}
		if matchSegments(r.segments, parts) {
			return r.Requirement, true
		}
	}
	return Requirement{}, false
}

// Requirement returns the effective requirement for method and path.
// Unmatched requests require authentication.
func (p *Policy) Requirement(method, path string) Requirement {
	req, ok := p.Match(method, path)
	if !ok {
		return Authenticated()
	}
	return req
}

// Check returns nil if identity may access method and path, ErrUnauthorized
// if an identity is needed and missing, or ErrForbidden if the identity
// lacks the required role.
func (p *Policy) Check(method, path string, identity *auth.Identity) error {
	return p.Requirement(method, path).Check(identity)
}

// Rules returns a copy of the rule table in evaluation order.
func (p *Policy) Rules() []Rule {
	out := make([]Rule, len(p.rules))
	for i, r := range p.rules {
		out[i] = r.Rule
	}
	return out
}

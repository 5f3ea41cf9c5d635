// Package authz decides whether a request may proceed given its route and
// the identity the authenticator resolved for it.
//
// A Policy is an ordered list of rules, each pairing a method and a path
// pattern with a Requirement. The first matching rule wins; a request no
// rule matches requires authentication.
//
//	policy := authz.NewPolicy(
//	    authz.Rule{Method: http.MethodPost, Pattern: "/login", Requirement: authz.Public()},
//	    authz.Rule{Method: http.MethodPut, Pattern: "/usuarios/:id/bloquear", Requirement: authz.Role("ROLE_ADMIN")},
//	    authz.Rule{Pattern: "/**", Requirement: authz.Authenticated()},
//	)
//	err := policy.Check(method, path, identity) // nil, ErrUnauthorized or ErrForbidden
//
// Path patterns are slash-separated. A segment is a literal, "*" or ":name"
// (exactly one segment), or a trailing "**" (zero or more segments).
//
// This package has no dependencies beyond the standard library and auth.
package authz

package middleware

import (
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/paymybuddy/api/utils"
	"go.uber.org/zap"
)

// Access is the authentication requirement of a route
type Access int

const (
	// Authenticated routes need a principal in the request context
	Authenticated Access = iota
	// Public routes are served without a principal
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "authenticated"
}

// subtreeSuffix marks a pattern that matches a path and everything below it
const subtreeSuffix = "/**"

// Rule binds an access level to a route pattern.
// An empty Method matches any method.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
}

type compiledRule struct {
	Rule
	prefix  string
	subtree bool
}

func (r compiledRule) matches(method, p string) bool {
	if r.Method != "" && !strings.EqualFold(r.Method, method) {
		return false
	}
	if !r.subtree {
		return p == r.prefix
	}
	if r.prefix == "/" {
		return true
	}
	return p == r.prefix || strings.HasPrefix(p, r.prefix+"/")
}

// moreSpecific orders rules so the first match is the most specific one:
// exact before subtree, longer before shorter, method-specific before any-method.
func moreSpecific(a, b compiledRule) bool {
	if a.subtree != b.subtree {
		return !a.subtree
	}
	if len(a.prefix) != len(b.prefix) {
		return len(a.prefix) > len(b.prefix)
	}
	return a.Method != "" && b.Method == ""
}

// AccessPolicy decides per route whether a principal is required.
// It is immutable after construction and safe for concurrent use.
type AccessPolicy struct {
	rules  []compiledRule
	logger *zap.Logger
}

// NewAccessPolicy compiles the rule table. Unmatched routes require authentication.
func NewAccessPolicy(rules []Rule, logger *zap.Logger) (*AccessPolicy, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if !strings.HasPrefix(rule.Pattern, "/") {
			return nil, fmt.Errorf("invalid access rule pattern %q: must start with /", rule.Pattern)
		}
		c := compiledRule{Rule: rule, prefix: rule.Pattern}
		if strings.HasSuffix(rule.Pattern, subtreeSuffix) {
			c.subtree = true
			c.prefix = strings.TrimSuffix(rule.Pattern, subtreeSuffix)
			if c.prefix == "" {
				c.prefix = "/"
			}
		}
		if strings.Contains(c.prefix, "*") {
			return nil, fmt.Errorf("invalid access rule pattern %q: wildcard only allowed as trailing /**", rule.Pattern)
		}
		c.prefix = path.Clean(c.prefix)
		compiled = append(compiled, c)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return moreSpecific(compiled[i], compiled[j])
	})

	return &AccessPolicy{rules: compiled, logger: logger}, nil
}

// DefaultRules returns the route table served by the API
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodPost, Pattern: "/user", Access: Public},
		{Pattern: "/api/auth/**", Access: Public},
		{Method: http.MethodGet, Pattern: "/healthz", Access: Public},
		{Method: http.MethodGet, Pattern: "/readyz", Access: Public},
	}
}

// DefaultAccessPolicy builds the policy from DefaultRules
func DefaultAccessPolicy(logger *zap.Logger) *AccessPolicy {
	policy, err := NewAccessPolicy(DefaultRules(), logger)
	if err != nil {
		panic(err)
	}
	return policy
}

// Match returns the access level of the most specific rule matching the request
func (p *AccessPolicy) Match(method, requestPath string) Access {
	cleaned := path.Clean("/" + requestPath)
	for _, rule := range p.rules {
		if rule.matches(method, cleaned) {
			return rule.Access
		}
	}
	return Authenticated
}

// Enforce rejects requests to authenticated routes that carry no principal.
// It must run after AuthMiddleware.Authenticate.
func (p *AccessPolicy) Enforce(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		access := p.Match(r.Method, routingPath(r))
		if access == Public {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		if PrincipalFromContext(ctx) == nil {
			p.logger.Info("rejected unauthenticated request",
				zap.String("request_id", GetRequestIDFromContext(ctx)),
				zap.String("method", r.Method),
				zap.String("path", routingPath(r)))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// routingPath returns the path chi routes on: the mounted route path when
// set, then the escaped path, then the decoded one.
func routingPath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePath != "" {
		return rctx.RoutePath
	}
	if r.URL.RawPath != "" {
		return r.URL.RawPath
	}
	return r.URL.Path
}

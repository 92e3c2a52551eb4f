// Package topology synthesizes the CDN distribution shape for a detected
// framework: origins, failover origin groups, and the precedence-ordered
// cache routing rules, plus the infrastructure template fragments that carry
// them.
package topology

import "fmt"

// OriginKind distinguishes the two backend types a distribution can fetch
// from.
type OriginKind string

const (
	OriginObjectStore OriginKind = "objectStore"
	OriginHTTP        OriginKind = "http"
)

// Fixed origin and group identifiers. Origins and groups share the
// TargetOriginID namespace consumed by cache behaviors.
const (
	OriginStaticFiles         = "StaticFiles"
	OriginStaticFilesFallback = "StaticFilesFallback"
	OriginServerFunction      = "ServerFunction"
	GroupStaticFilesSSR       = "StaticFilesSSR"
	GroupStaticFilesSPA       = "StaticFilesSPA"
)

// Origin is one backend of the distribution. DomainName may be a literal
// string or a deferred template reference resolved at render time.
type Origin struct {
	ID         string
	Kind       OriginKind
	DomainName any

	// OriginPath redirects failover traffic to a specific fallback object.
	OriginPath string
}

// OriginGroup pairs a primary and secondary origin; the listed status codes
// from the primary trigger failover to the secondary.
type OriginGroup struct {
	ID                  string
	PrimaryOriginID     string
	SecondaryOriginID   string
	FailoverStatusCodes []int
}

// FunctionAssociation attaches an edge function to a behavior.
type FunctionAssociation struct {
	EventType   string
	FunctionRef any
}

// CacheBehavior is one routing+caching rule. PathPattern is empty only on
// the default behavior. Behaviors are evaluated in list order, first match
// wins, with the default implicitly last.
type CacheBehavior struct {
	PathPattern             string
	TargetOriginID          string
	CachePolicyID           any
	OriginRequestPolicyID   string
	ResponseHeadersPolicyID string
	AllowedMethods          []string
	CachedMethods           []string
	ViewerProtocolPolicy    string
	Compress                bool
	FunctionAssociations    []FunctionAssociation
}

// DistributionTopology aggregates everything the distribution resource
// needs. It is built fresh on every package phase and never persisted.
type DistributionTopology struct {
	Enabled           bool
	HTTPVersion       string
	PriceClass        string
	IPv6              bool
	Comment           string
	DefaultRootObject string

	// Aliases and CertificateARN are set together or not at all.
	Aliases           []string
	CertificateARN    string
	MinimumTLSVersion string

	DefaultCacheBehavior CacheBehavior
	CacheBehaviors       []CacheBehavior
	Origins              []Origin
	OriginGroups         []OriginGroup
}

// Validate checks the structural invariants: every target referenced by a
// behavior or group exists, group ids do not collide with origin ids, and no
// two path-scoped behaviors share a pattern.
func (t *DistributionTopology) Validate() error {
	origins := map[string]bool{}
	for _, o := range t.Origins {
		if origins[o.ID] {
			return fmt.Errorf("duplicate origin id %q", o.ID)
		}
		origins[o.ID] = true
	}

	targets := map[string]bool{}
	for id := range origins {
		targets[id] = true
	}
	for _, g := range t.OriginGroups {
		if targets[g.ID] {
			return fmt.Errorf("origin group id %q collides with an existing target id", g.ID)
		}
		if !origins[g.PrimaryOriginID] {
			return fmt.Errorf("origin group %q references unknown primary origin %q", g.ID, g.PrimaryOriginID)
		}
		if !origins[g.SecondaryOriginID] {
			return fmt.Errorf("origin group %q references unknown secondary origin %q", g.ID, g.SecondaryOriginID)
		}
		targets[g.ID] = true
	}

	if t.DefaultCacheBehavior.PathPattern != "" {
		return fmt.Errorf("default cache behavior must not carry a path pattern")
	}
	if !targets[t.DefaultCacheBehavior.TargetOriginID] {
		return fmt.Errorf("default cache behavior targets unknown id %q", t.DefaultCacheBehavior.TargetOriginID)
	}

	patterns := map[string]bool{}
	for _, b := range t.CacheBehaviors {
		if b.PathPattern == "" {
			return fmt.Errorf("path-scoped cache behavior targeting %q has no pattern", b.TargetOriginID)
		}
		if patterns[b.PathPattern] {
			return fmt.Errorf("duplicate cache behavior pattern %q", b.PathPattern)
		}
		patterns[b.PathPattern] = true
		if !targets[b.TargetOriginID] {
			return fmt.Errorf("cache behavior %q targets unknown id %q", b.PathPattern, b.TargetOriginID)
		}
	}

	if (len(t.Aliases) == 0) != (t.CertificateARN == "") {
		return fmt.Errorf("aliases and certificate must be set together")
	}
	return nil
}

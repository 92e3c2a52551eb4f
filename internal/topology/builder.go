package topology

import (
	"github.com/frontship/frontship/internal/assets"
	"github.com/frontship/frontship/internal/framework"
)

// CloudFront managed policy ids. Static content rides the managed
// long-cache policies; server responses are uncached unless a dedicated
// cache policy resource is emitted alongside the distribution.
const (
	cachePolicyCachingOptimized = "658327ea-f89d-4fab-a63d-7e88639e58f6"
	cachePolicyCachingDisabled  = "4135ea2d-6df8-44a3-9df3-4b5a84be39ad"

	originRequestPolicyAllViewerExceptHost = "b689b0a8-53d0-40ab-baf2-68738e2966ac"

	responseHeadersPolicySimpleCORS = "60669652-455b-4ae9-85a4-c4c02393f86c"
)

var (
	readMethods = []string{"GET", "HEAD", "OPTIONS"}
	allMethods  = []string{"GET", "HEAD", "OPTIONS", "PUT", "POST", "PATCH", "DELETE"}

	// Object-store origins answer 403 for missing keys without list
	// permission and 404 with it; either means "not a static asset".
	failoverStatusCodes = []int{403, 404}
)

// Options are the user-tunable knobs of the distribution. Deferred
// references (domains, emitted policy/function resources) are opaque values
// substituted at template render time.
type Options struct {
	Enabled           *bool
	HTTPVersion       string
	PriceClass        string
	IPv6              *bool
	Comment           string
	Aliases           []string
	CertificateARN    string
	MinimumTLSVersion string

	// ForwardHost attaches the viewer-request function that copies the
	// inbound Host header to x-forwarded-host for the compute origin.
	ForwardHost bool

	BucketDomain           any
	ServerDomain           any
	SSRCachePolicyRef      any
	HostForwardFunctionRef any
}

// Build synthesizes the distribution topology for a profile. Server-compute
// profiles need the top-level entries of the public directory to promote
// known static subpaths ahead of the server default; static-only profiles
// use a fixed two-origin SPA shape and ignore entries. Returned warnings are
// documented simplifications, not failures.
func Build(profile *framework.Profile, entries []assets.Entry, opts Options) (*DistributionTopology, []string, error) {
	t := &DistributionTopology{
		Enabled:           boolOr(opts.Enabled, true),
		HTTPVersion:       stringOr(opts.HTTPVersion, "http2"),
		PriceClass:        stringOr(opts.PriceClass, "PriceClass_All"),
		IPv6:              boolOr(opts.IPv6, true),
		Comment:           opts.Comment,
		MinimumTLSVersion: opts.MinimumTLSVersion,
	}

	var warnings []string
	switch {
	case len(opts.Aliases) > 0 && opts.CertificateARN != "":
		t.Aliases = opts.Aliases
		t.CertificateARN = opts.CertificateARN
	case len(opts.Aliases) > 0:
		warnings = append(warnings, "aliases configured without a certificate; both were skipped")
	case opts.CertificateARN != "":
		warnings = append(warnings, "certificate configured without aliases; both were skipped")
	}

	if profile.HasServerCompute {
		buildServerTopology(t, entries, opts)
	} else {
		buildSPATopology(t, opts)
	}

	if err := t.Validate(); err != nil {
		return nil, nil, err
	}
	return t, warnings, nil
}

// buildServerTopology routes unmatched paths to the render server and
// promotes every known static subpath to an origin group that prefers the
// object store but falls back to the server when an asset is gone.
func buildServerTopology(t *DistributionTopology, entries []assets.Entry, opts Options) {
	t.Origins = []Origin{
		{ID: OriginStaticFiles, Kind: OriginObjectStore, DomainName: opts.BucketDomain},
		{ID: OriginServerFunction, Kind: OriginHTTP, DomainName: opts.ServerDomain},
	}
	t.OriginGroups = []OriginGroup{{
		ID:                  GroupStaticFilesSSR,
		PrimaryOriginID:     OriginStaticFiles,
		SecondaryOriginID:   OriginServerFunction,
		FailoverStatusCodes: failoverStatusCodes,
	}}

	serverCachePolicy := opts.SSRCachePolicyRef
	if serverCachePolicy == nil {
		serverCachePolicy = cachePolicyCachingDisabled
	}
	t.DefaultCacheBehavior = CacheBehavior{
		TargetOriginID:        OriginServerFunction,
		CachePolicyID:         serverCachePolicy,
		OriginRequestPolicyID: originRequestPolicyAllViewerExceptHost,
		AllowedMethods:        allMethods,
		CachedMethods:         readMethods,
		ViewerProtocolPolicy:  "redirect-to-https",
		Compress:              true,
		FunctionAssociations:  hostForwardAssociation(opts),
	}

	for _, entry := range entries {
		pattern := entry.Name
		if entry.IsDir {
			pattern += "/*"
		}
		t.CacheBehaviors = append(t.CacheBehaviors, CacheBehavior{
			PathPattern:             pattern,
			TargetOriginID:          GroupStaticFilesSSR,
			CachePolicyID:           cachePolicyCachingOptimized,
			ResponseHeadersPolicyID: responseHeadersPolicySimpleCORS,
			AllowedMethods:          readMethods,
			CachedMethods:           readMethods,
			ViewerProtocolPolicy:    "redirect-to-https",
			Compress:                true,
			// The group's secondary is the server, so the Host header
			// must survive here too.
			FunctionAssociations: hostForwardAssociation(opts),
		})
	}
}

// buildSPATopology serves everything from the object store. Misses fail
// over to a second origin pointing at the root document with the requested
// path encoded as a query parameter, so the client router still receives
// the intended path.
func buildSPATopology(t *DistributionTopology, opts Options) {
	t.Origins = []Origin{
		{ID: OriginStaticFiles, Kind: OriginObjectStore, DomainName: opts.BucketDomain},
		{
			ID:         OriginStaticFilesFallback,
			Kind:       OriginObjectStore,
			DomainName: opts.BucketDomain,
			OriginPath: "/index.html?fallback=",
		},
	}
	t.OriginGroups = []OriginGroup{{
		ID:                  GroupStaticFilesSPA,
		PrimaryOriginID:     OriginStaticFiles,
		SecondaryOriginID:   OriginStaticFilesFallback,
		FailoverStatusCodes: failoverStatusCodes,
	}}
	t.DefaultRootObject = "index.html"
	t.DefaultCacheBehavior = CacheBehavior{
		TargetOriginID:          GroupStaticFilesSPA,
		CachePolicyID:           cachePolicyCachingOptimized,
		ResponseHeadersPolicyID: responseHeadersPolicySimpleCORS,
		AllowedMethods:          readMethods,
		CachedMethods:           readMethods,
		ViewerProtocolPolicy:    "redirect-to-https",
		Compress:                true,
	}
}

func hostForwardAssociation(opts Options) []FunctionAssociation {
	if !opts.ForwardHost || opts.HostForwardFunctionRef == nil {
		return nil
	}
	return []FunctionAssociation{{
		EventType:   "viewer-request",
		FunctionRef: opts.HostForwardFunctionRef,
	}}
}

func boolOr(v *bool, def bool) bool {
	if v != nil {
		return *v
	}
	return def
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

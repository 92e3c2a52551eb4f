package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontship/frontship/internal/assets"
	"github.com/frontship/frontship/internal/framework"
)

func serverOpts() Options {
	opts := BuilderRefs(true, true)
	opts.ForwardHost = true
	return opts
}

func spaOpts() Options {
	return BuilderRefs(false, false)
}

func TestServerTopology(t *testing.T) {
	entries := []assets.Entry{
		{Name: "assets", IsDir: true},
		{Name: "favicon.ico"},
	}
	topo, warnings, err := Build(framework.Lookup(framework.KindReactRouter), entries, serverOpts())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// Default routes unmatched paths to the render server, never a static
	// origin.
	assert.Equal(t, OriginServerFunction, topo.DefaultCacheBehavior.TargetOriginID)
	assert.Empty(t, topo.DefaultCacheBehavior.PathPattern)

	require.Len(t, topo.CacheBehaviors, 2)
	assert.Equal(t, "assets/*", topo.CacheBehaviors[0].PathPattern)
	assert.Equal(t, "favicon.ico", topo.CacheBehaviors[1].PathPattern)
	for _, b := range topo.CacheBehaviors {
		assert.Equal(t, GroupStaticFilesSSR, b.TargetOriginID)
	}

	require.Len(t, topo.OriginGroups, 1)
	group := topo.OriginGroups[0]
	assert.Equal(t, GroupStaticFilesSSR, group.ID)
	assert.Equal(t, OriginStaticFiles, group.PrimaryOriginID)
	assert.Equal(t, OriginServerFunction, group.SecondaryOriginID)
	assert.ElementsMatch(t, []int{403, 404}, group.FailoverStatusCodes)

	assert.Empty(t, topo.DefaultRootObject)
}

func TestServerTopologyPatternsComeFromListing(t *testing.T) {
	entries := []assets.Entry{
		{Name: "_app", IsDir: true},
		{Name: "robots.txt"},
	}
	topo, _, err := Build(framework.Lookup(framework.KindNuxt), entries, serverOpts())
	require.NoError(t, err)

	patterns := map[string]bool{}
	for _, b := range topo.CacheBehaviors {
		require.NotEmpty(t, b.PathPattern)
		assert.False(t, patterns[b.PathPattern], "duplicate pattern %s", b.PathPattern)
		patterns[b.PathPattern] = true
	}
	assert.True(t, patterns["_app/*"])
	assert.True(t, patterns["robots.txt"])
	assert.Len(t, patterns, len(entries))
}

func TestServerTopologyHostForwardAssociations(t *testing.T) {
	entries := []assets.Entry{{Name: "assets", IsDir: true}}
	topo, _, err := Build(framework.Lookup(framework.KindReactRouter), entries, serverOpts())
	require.NoError(t, err)

	// The default behavior hits the server directly; the group behaviors
	// can fail over to it. Both must carry the association.
	require.Len(t, topo.DefaultCacheBehavior.FunctionAssociations, 1)
	assert.Equal(t, "viewer-request", topo.DefaultCacheBehavior.FunctionAssociations[0].EventType)
	for _, b := range topo.CacheBehaviors {
		assert.Len(t, b.FunctionAssociations, 1, "behavior %s", b.PathPattern)
	}
}

func TestServerTopologyWithoutHostForward(t *testing.T) {
	opts := BuilderRefs(true, false)
	topo, _, err := Build(framework.Lookup(framework.KindReactRouter),
		[]assets.Entry{{Name: "assets", IsDir: true}}, opts)
	require.NoError(t, err)
	assert.Empty(t, topo.DefaultCacheBehavior.FunctionAssociations)
	assert.Empty(t, topo.CacheBehaviors[0].FunctionAssociations)
}

func TestSPATopology(t *testing.T) {
	topo, warnings, err := Build(framework.Lookup(framework.KindVite), nil, spaOpts())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, GroupStaticFilesSPA, topo.DefaultCacheBehavior.TargetOriginID)
	assert.Empty(t, topo.CacheBehaviors)
	assert.Equal(t, "index.html", topo.DefaultRootObject)

	require.Len(t, topo.Origins, 2)
	require.Len(t, topo.OriginGroups, 1)
	group := topo.OriginGroups[0]
	assert.Equal(t, OriginStaticFiles, group.PrimaryOriginID)
	assert.Equal(t, OriginStaticFilesFallback, group.SecondaryOriginID)
	assert.ElementsMatch(t, []int{403, 404}, group.FailoverStatusCodes)

	var fallback *Origin
	for i := range topo.Origins {
		if topo.Origins[i].ID == OriginStaticFilesFallback {
			fallback = &topo.Origins[i]
		}
	}
	require.NotNil(t, fallback)
	assert.Equal(t, "/index.html?fallback=", fallback.OriginPath)
	assert.Equal(t, OriginObjectStore, fallback.Kind)
}

func TestAliasCertificatePairing(t *testing.T) {
	base := spaOpts()

	t.Run("both set", func(t *testing.T) {
		opts := base
		opts.Aliases = []string{"www.example.com"}
		opts.CertificateARN = "arn:aws:acm:us-east-1:123:certificate/abc"
		topo, warnings, err := Build(framework.Lookup(framework.KindVite), nil, opts)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, []string{"www.example.com"}, topo.Aliases)
		assert.NotEmpty(t, topo.CertificateARN)
	})

	t.Run("aliases only", func(t *testing.T) {
		opts := base
		opts.Aliases = []string{"www.example.com"}
		topo, warnings, err := Build(framework.Lookup(framework.KindVite), nil, opts)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Empty(t, topo.Aliases)
		assert.Empty(t, topo.CertificateARN)
	})

	t.Run("certificate only", func(t *testing.T) {
		opts := base
		opts.CertificateARN = "arn:aws:acm:us-east-1:123:certificate/abc"
		topo, warnings, err := Build(framework.Lookup(framework.KindVite), nil, opts)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Empty(t, topo.Aliases)
		assert.Empty(t, topo.CertificateARN)
	})
}

func TestDefaults(t *testing.T) {
	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, spaOpts())
	require.NoError(t, err)
	assert.True(t, topo.Enabled)
	assert.True(t, topo.IPv6)
	assert.Equal(t, "http2", topo.HTTPVersion)
	assert.Equal(t, "PriceClass_All", topo.PriceClass)
}

func TestUserOverrides(t *testing.T) {
	disabled := false
	noV6 := false
	opts := spaOpts()
	opts.Enabled = &disabled
	opts.IPv6 = &noV6
	opts.HTTPVersion = "http2and3"
	opts.PriceClass = "PriceClass_100"
	opts.Comment = "marketing site"

	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, opts)
	require.NoError(t, err)
	assert.False(t, topo.Enabled)
	assert.False(t, topo.IPv6)
	assert.Equal(t, "http2and3", topo.HTTPVersion)
	assert.Equal(t, "PriceClass_100", topo.PriceClass)
	assert.Equal(t, "marketing site", topo.Comment)
}

func TestValidateCatchesBrokenTopologies(t *testing.T) {
	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, spaOpts())
	require.NoError(t, err)
	require.NoError(t, topo.Validate())

	t.Run("unknown behavior target", func(t *testing.T) {
		broken := *topo
		broken.DefaultCacheBehavior.TargetOriginID = "Nowhere"
		assert.Error(t, broken.Validate())
	})

	t.Run("group id colliding with origin id", func(t *testing.T) {
		broken := *topo
		broken.OriginGroups = append([]OriginGroup{}, topo.OriginGroups...)
		broken.OriginGroups = append(broken.OriginGroups, OriginGroup{
			ID:                OriginStaticFiles,
			PrimaryOriginID:   OriginStaticFiles,
			SecondaryOriginID: OriginStaticFilesFallback,
		})
		assert.Error(t, broken.Validate())
	})

	t.Run("duplicate path patterns", func(t *testing.T) {
		broken := *topo
		dup := CacheBehavior{PathPattern: "assets/*", TargetOriginID: OriginStaticFiles}
		broken.CacheBehaviors = []CacheBehavior{dup, dup}
		assert.Error(t, broken.Validate())
	})
}

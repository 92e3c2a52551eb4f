package topology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontship/frontship/internal/assets"
	"github.com/frontship/frontship/internal/framework"
)

func TestFromTopologySPA(t *testing.T) {
	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, BuilderRefs(false, false))
	require.NoError(t, err)

	tmpl := FromTopology(topo, false, false)

	for _, logical := range []string{BucketResource, BucketPolicyResource, OriginAccessControlResource, DistributionResource} {
		assert.Contains(t, tmpl.Resources, logical)
	}
	assert.NotContains(t, tmpl.Resources, ServerCachePolicyResource)
	assert.NotContains(t, tmpl.Resources, HostForwardFunctionResource)

	for _, name := range []string{OutputBucketName, OutputSiteURL, OutputCloudFrontDomain} {
		assert.Contains(t, tmpl.Outputs, name)
	}

	dist := tmpl.Resources[DistributionResource]
	cfg, ok := dist.Properties["DistributionConfig"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, cfg, "CacheBehaviors")
	assert.Equal(t, "index.html", cfg["DefaultRootObject"])
	assert.Equal(t, map[string]any{"CloudFrontDefaultCertificate": true}, cfg["ViewerCertificate"])
	assert.NotContains(t, cfg, "Aliases")

	// The whole fragment must be JSON-serializable for the host.
	_, err = json.Marshal(tmpl)
	require.NoError(t, err)
}

func TestFromTopologyServer(t *testing.T) {
	opts := BuilderRefs(true, true)
	opts.ForwardHost = true
	entries := []assets.Entry{{Name: "assets", IsDir: true}, {Name: "favicon.ico"}}
	topo, _, err := Build(framework.Lookup(framework.KindReactRouter), entries, opts)
	require.NoError(t, err)

	tmpl := FromTopology(topo, true, true)
	assert.Contains(t, tmpl.Resources, ServerCachePolicyResource)
	assert.Contains(t, tmpl.Resources, HostForwardFunctionResource)

	policy := tmpl.Resources[ServerCachePolicyResource].Properties["CachePolicyConfig"].(map[string]any)
	assert.Equal(t, 0, policy["MinTTL"])
	assert.Equal(t, 0, policy["DefaultTTL"])
	assert.Equal(t, 31536000, policy["MaxTTL"])
	params := policy["ParametersInCacheKeyAndForwardedToOrigin"].(map[string]any)
	headers := params["HeadersConfig"].(map[string]any)
	assert.ElementsMatch(t, []string{"origin", "x-forwarded-host"}, headers["Headers"])

	dist := tmpl.Resources[DistributionResource].Properties["DistributionConfig"].(map[string]any)
	behaviors, ok := dist["CacheBehaviors"].([]any)
	require.True(t, ok)
	require.Len(t, behaviors, 2)
	first := behaviors[0].(map[string]any)
	assert.Equal(t, "assets/*", first["PathPattern"])
	assert.Equal(t, GroupStaticFilesSSR, first["TargetOriginId"])
}

func TestFromTopologyBucketEncryption(t *testing.T) {
	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, BuilderRefs(false, false))
	require.NoError(t, err)

	bucket := FromTopology(topo, false, false).Resources[BucketResource]
	assert.Equal(t, "AWS::S3::Bucket", bucket.Type)
	data, err := json.Marshal(bucket.Properties)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AES256")
}

func TestFromTopologyAliases(t *testing.T) {
	opts := BuilderRefs(false, false)
	opts.Aliases = []string{"www.example.com", "example.com"}
	opts.CertificateARN = "arn:aws:acm:us-east-1:123:certificate/abc"
	topo, _, err := Build(framework.Lookup(framework.KindVite), nil, opts)
	require.NoError(t, err)

	dist := FromTopology(topo, false, false).Resources[DistributionResource]
	cfg := dist.Properties["DistributionConfig"].(map[string]any)
	assert.Equal(t, []string{"www.example.com", "example.com"}, cfg["Aliases"])
	cert := cfg["ViewerCertificate"].(map[string]any)
	assert.Equal(t, "arn:aws:acm:us-east-1:123:certificate/abc", cert["AcmCertificateArn"])
	assert.Equal(t, "TLSv1.2_2021", cert["MinimumProtocolVersion"])
}

func TestValidateFunctionCode(t *testing.T) {
	if err := ValidateFunctionCode(HostForwardFunctionCode); err != nil {
		t.Fatalf("shipped function code must parse: %v", err)
	}
	if err := ValidateFunctionCode("function handler( {"); err == nil {
		t.Fatal("expected a parse error")
	}
}

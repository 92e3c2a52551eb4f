package topology

import "fmt"

// Logical resource ids emitted into the infrastructure template. The
// compute unit itself (and its invocation URL) is registered with the host
// framework separately; ServerFunctionURLResource names the host-side
// resource whose URL the http origin points at.
const (
	BucketResource              = "SiteBucket"
	BucketPolicyResource        = "SiteBucketPolicy"
	OriginAccessControlResource = "SiteOriginAccessControl"
	DistributionResource        = "SiteDistribution"
	ServerCachePolicyResource   = "ServerCachePolicy"
	HostForwardFunctionResource = "HostForwardFunction"
	ServerFunctionURLResource   = "ServerFunctionUrl"
)

// Stack output names consumed by later pipeline phases and by users.
const (
	OutputBucketName       = "SiteBucketName"
	OutputSiteURL          = "SiteURL"
	OutputCloudFrontDomain = "SiteCloudFrontDomain"
)

// Template is the fragment of the declarative infrastructure template this
// tool owns. The host's template compiler merges and applies it.
type Template struct {
	Resources map[string]Resource `json:"Resources"`
	Outputs   map[string]Output   `json:"Outputs"`
}

type Resource struct {
	Type       string         `json:"Type"`
	Properties map[string]any `json:"Properties,omitempty"`
}

type Output struct {
	Value any `json:"Value"`
}

// Deferred-reference intrinsics, resolved by the template engine.

func Ref(logical string) any {
	return map[string]any{"Ref": logical}
}

func GetAtt(logical, attr string) any {
	return map[string]any{"Fn::GetAtt": []string{logical, attr}}
}

func Sub(tmpl string) any {
	return map[string]any{"Fn::Sub": tmpl}
}

func Join(delim string, parts ...any) any {
	return map[string]any{"Fn::Join": []any{delim, parts}}
}

func Select(index int, value any) any {
	return map[string]any{"Fn::Select": []any{index, value}}
}

func Split(delim string, value any) any {
	return map[string]any{"Fn::Split": []any{delim, value}}
}

// BuilderRefs returns the deferred references the topology builder needs:
// the bucket's regional domain, the compute invocation URL's domain (a
// function URL is "https://<domain>/", hence the split/select), and the
// optional emitted cache policy and edge function.
func BuilderRefs(serverCompute, forwardHost bool) Options {
	opts := Options{
		BucketDomain: GetAtt(BucketResource, "RegionalDomainName"),
	}
	if serverCompute {
		opts.ServerDomain = Select(2, Split("/", GetAtt(ServerFunctionURLResource, "FunctionUrl")))
		opts.SSRCachePolicyRef = Ref(ServerCachePolicyResource)
		if forwardHost {
			opts.HostForwardFunctionRef = GetAtt(HostForwardFunctionResource, "FunctionARN")
		}
	}
	return opts
}

// FromTopology renders the template fragments: the encrypted site bucket,
// its CDN-scoped access policy, the origin access control, the distribution
// itself, and for server-compute sites the response cache policy and the
// host-forwarding viewer-request function.
func FromTopology(t *DistributionTopology, serverCompute, forwardHost bool) *Template {
	tmpl := &Template{
		Resources: map[string]Resource{},
		Outputs: map[string]Output{
			OutputBucketName:       {Value: Ref(BucketResource)},
			OutputSiteURL:          {Value: Join("", "https://", GetAtt(DistributionResource, "DomainName"))},
			OutputCloudFrontDomain: {Value: GetAtt(DistributionResource, "DomainName")},
		},
	}

	tmpl.Resources[BucketResource] = Resource{
		Type: "AWS::S3::Bucket",
		Properties: map[string]any{
			"BucketEncryption": map[string]any{
				"ServerSideEncryptionConfiguration": []any{
					map[string]any{
						"ServerSideEncryptionByDefault": map[string]any{"SSEAlgorithm": "AES256"},
					},
				},
			},
		},
	}

	tmpl.Resources[OriginAccessControlResource] = Resource{
		Type: "AWS::CloudFront::OriginAccessControl",
		Properties: map[string]any{
			"OriginAccessControlConfig": map[string]any{
				"Name":                          Sub("${AWS::StackName}-site-oac"),
				"OriginAccessControlOriginType": "s3",
				"SigningBehavior":               "always",
				"SigningProtocol":               "sigv4",
			},
		},
	}

	tmpl.Resources[BucketPolicyResource] = Resource{
		Type: "AWS::S3::BucketPolicy",
		Properties: map[string]any{
			"Bucket": Ref(BucketResource),
			"PolicyDocument": map[string]any{
				"Version": "2012-10-17",
				"Statement": []any{
					map[string]any{
						"Effect":    "Allow",
						"Principal": map[string]any{"Service": "cloudfront.amazonaws.com"},
						"Action":    "s3:GetObject",
						"Resource":  Join("", GetAtt(BucketResource, "Arn"), "/*"),
						"Condition": map[string]any{
							"StringEquals": map[string]any{
								"AWS:SourceArn": Sub(fmt.Sprintf(
									"arn:aws:cloudfront::${AWS::AccountId}:distribution/${%s}", DistributionResource)),
							},
						},
					},
				},
			},
		},
	}

	if serverCompute {
		tmpl.Resources[ServerCachePolicyResource] = Resource{
			Type: "AWS::CloudFront::CachePolicy",
			Properties: map[string]any{
				"CachePolicyConfig": map[string]any{
					"Name":       Sub("${AWS::StackName}-server-responses"),
					"MinTTL":     0,
					"DefaultTTL": 0,
					"MaxTTL":     31536000,
					"ParametersInCacheKeyAndForwardedToOrigin": map[string]any{
						"EnableAcceptEncodingGzip":   true,
						"EnableAcceptEncodingBrotli": true,
						"CookiesConfig":              map[string]any{"CookieBehavior": "all"},
						"QueryStringsConfig":         map[string]any{"QueryStringBehavior": "all"},
						"HeadersConfig": map[string]any{
							"HeaderBehavior": "whitelist",
							"Headers":        []string{"origin", "x-forwarded-host"},
						},
					},
				},
			},
		}
		if forwardHost {
			tmpl.Resources[HostForwardFunctionResource] = Resource{
				Type: "AWS::CloudFront::Function",
				Properties: map[string]any{
					"Name":         Sub("${AWS::StackName}-host-forward"),
					"AutoPublish":  true,
					"FunctionCode": HostForwardFunctionCode,
					"FunctionConfig": map[string]any{
						"Comment": "Copy the viewer Host header into x-forwarded-host",
						"Runtime": "cloudfront-js-2.0",
					},
				},
			}
		}
	}

	tmpl.Resources[DistributionResource] = Resource{
		Type:       "AWS::CloudFront::Distribution",
		Properties: map[string]any{"DistributionConfig": renderDistributionConfig(t)},
	}
	return tmpl
}

func renderDistributionConfig(t *DistributionTopology) map[string]any {
	cfg := map[string]any{
		"Enabled":              t.Enabled,
		"HttpVersion":          t.HTTPVersion,
		"IPV6Enabled":          t.IPv6,
		"PriceClass":           t.PriceClass,
		"Origins":              renderOrigins(t.Origins),
		"DefaultCacheBehavior": renderBehavior(t.DefaultCacheBehavior),
	}
	if t.Comment != "" {
		cfg["Comment"] = t.Comment
	}
	if t.DefaultRootObject != "" {
		cfg["DefaultRootObject"] = t.DefaultRootObject
	}
	if len(t.OriginGroups) > 0 {
		cfg["OriginGroups"] = renderOriginGroups(t.OriginGroups)
	}
	if len(t.CacheBehaviors) > 0 {
		behaviors := make([]any, 0, len(t.CacheBehaviors))
		for _, b := range t.CacheBehaviors {
			behaviors = append(behaviors, renderBehavior(b))
		}
		cfg["CacheBehaviors"] = behaviors
	}
	if len(t.Aliases) > 0 && t.CertificateARN != "" {
		cfg["Aliases"] = t.Aliases
		cfg["ViewerCertificate"] = map[string]any{
			"AcmCertificateArn":      t.CertificateARN,
			"SslSupportMethod":       "sni-only",
			"MinimumProtocolVersion": stringOr(t.MinimumTLSVersion, "TLSv1.2_2021"),
		}
	} else {
		cfg["ViewerCertificate"] = map[string]any{"CloudFrontDefaultCertificate": true}
	}
	return cfg
}

func renderOrigins(origins []Origin) []any {
	out := make([]any, 0, len(origins))
	for _, o := range origins {
		origin := map[string]any{
			"Id":         o.ID,
			"DomainName": o.DomainName,
		}
		if o.OriginPath != "" {
			origin["OriginPath"] = o.OriginPath
		}
		switch o.Kind {
		case OriginObjectStore:
			origin["S3OriginConfig"] = map[string]any{"OriginAccessIdentity": ""}
			origin["OriginAccessControlId"] = GetAtt(OriginAccessControlResource, "Id")
		case OriginHTTP:
			origin["CustomOriginConfig"] = map[string]any{
				"HTTPPort":             80,
				"HTTPSPort":            443,
				"OriginProtocolPolicy": "https-only",
			}
		}
		out = append(out, origin)
	}
	return out
}

func renderOriginGroups(groups []OriginGroup) map[string]any {
	items := make([]any, 0, len(groups))
	for _, g := range groups {
		items = append(items, map[string]any{
			"Id": g.ID,
			"FailoverCriteria": map[string]any{
				"StatusCodes": map[string]any{
					"Quantity": len(g.FailoverStatusCodes),
					"Items":    g.FailoverStatusCodes,
				},
			},
			"Members": map[string]any{
				"Quantity": 2,
				"Items": []any{
					map[string]any{"OriginId": g.PrimaryOriginID},
					map[string]any{"OriginId": g.SecondaryOriginID},
				},
			},
		})
	}
	return map[string]any{"Quantity": len(groups), "Items": items}
}

func renderBehavior(b CacheBehavior) map[string]any {
	out := map[string]any{
		"TargetOriginId":       b.TargetOriginID,
		"CachePolicyId":        b.CachePolicyID,
		"AllowedMethods":       b.AllowedMethods,
		"CachedMethods":        b.CachedMethods,
		"ViewerProtocolPolicy": b.ViewerProtocolPolicy,
		"Compress":             b.Compress,
	}
	if b.PathPattern != "" {
		out["PathPattern"] = b.PathPattern
	}
	if b.OriginRequestPolicyID != "" {
		out["OriginRequestPolicyId"] = b.OriginRequestPolicyID
	}
	if b.ResponseHeadersPolicyID != "" {
		out["ResponseHeadersPolicyId"] = b.ResponseHeadersPolicyID
	}
	if len(b.FunctionAssociations) > 0 {
		assocs := make([]any, 0, len(b.FunctionAssociations))
		for _, a := range b.FunctionAssociations {
			assocs = append(assocs, map[string]any{
				"EventType":   a.EventType,
				"FunctionARN": a.FunctionRef,
			})
		}
		out["FunctionAssociations"] = assocs
	}
	return out
}

// Package framework describes the supported web build frameworks and detects
// which one a project uses. A profile is pure data: where the build writes
// its output, which paths carry content hashes, and whether a server bundle
// exists that needs compute behind the CDN.
package framework

import "strings"

// Kind identifies a supported framework profile.
type Kind string

const (
	KindReactRouter Kind = "react-router"
	KindNuxt        Kind = "nuxt"
	KindNitro       Kind = "nitro"
	KindVite        Kind = "vite"

	// KindStatic forces the no-compute shape regardless of detection. It
	// shares the vite profile's layout.
	KindStatic Kind = "static"
)

// Profile is an immutable description of one supported framework. One
// instance exists per kind; callers hold it by pointer but never mutate it.
type Profile struct {
	Kind             Kind
	HasServerCompute bool

	// BuildOutputDir is the root the build writes into, relative to the
	// project directory.
	BuildOutputDir string

	// PublicDir holds the static assets served from the object store.
	PublicDir string

	// ServerDir holds the server bundle; empty when HasServerCompute is
	// false.
	ServerDir string

	// ComputeEntryPoint is the handler path inside ServerDir.
	ComputeEntryPoint string

	// ImmutableAssetPrefix marks bundler output whose names embed content
	// hashes; anything under it is safe to cache for a year.
	ImmutableAssetPrefix string

	// BuildEnv is merged into the build process environment, below user
	// overrides.
	BuildEnv map[string]string
}

// ImmutableAsset reports whether the given key (POSIX-style, relative to
// PublicDir) is a hashed, indefinitely cacheable asset.
func (p *Profile) ImmutableAsset(key string) bool {
	return strings.HasPrefix(key, p.ImmutableAssetPrefix)
}

var profiles = map[Kind]*Profile{
	KindReactRouter: {
		Kind:                 KindReactRouter,
		HasServerCompute:     true,
		BuildOutputDir:       "build",
		PublicDir:            "build/client",
		ServerDir:            "build/server",
		ComputeEntryPoint:    "build/server/index.js",
		ImmutableAssetPrefix: "assets/",
	},
	KindNuxt: {
		Kind:                 KindNuxt,
		HasServerCompute:     true,
		BuildOutputDir:       ".output",
		PublicDir:            ".output/public",
		ServerDir:            ".output/server",
		ComputeEntryPoint:    ".output/server/index.mjs",
		ImmutableAssetPrefix: "_nuxt/",
		BuildEnv:             map[string]string{"NITRO_PRESET": "aws-lambda"},
	},
	KindNitro: {
		Kind:                 KindNitro,
		HasServerCompute:     true,
		BuildOutputDir:       ".output",
		PublicDir:            ".output/public",
		ServerDir:            ".output/server",
		ComputeEntryPoint:    ".output/server/index.mjs",
		ImmutableAssetPrefix: "assets/",
		BuildEnv:             map[string]string{"NITRO_PRESET": "aws-lambda"},
	},
	KindVite: {
		Kind:                 KindVite,
		HasServerCompute:     false,
		BuildOutputDir:       "dist",
		PublicDir:            "dist",
		ImmutableAssetPrefix: "assets/",
	},
}

// Lookup returns the profile for a kind, or nil when the kind is unknown.
// KindStatic resolves to the vite layout with its own tag preserved.
func Lookup(kind Kind) *Profile {
	if kind == KindStatic {
		p := *profiles[KindVite]
		p.Kind = KindStatic
		return &p
	}
	return profiles[kind]
}

// Kinds lists every accepted framework identifier, for error messages.
func Kinds() []string {
	return []string{
		string(KindReactRouter), string(KindNuxt), string(KindNitro),
		string(KindVite), string(KindStatic),
	}
}

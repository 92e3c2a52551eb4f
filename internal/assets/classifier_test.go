package assets

import (
	"strings"
	"testing"

	"github.com/frontship/frontship/internal/framework"
)

func TestClassifyImmutableVsNormal(t *testing.T) {
	profile := framework.Lookup(framework.KindVite)
	tests := []struct {
		key  string
		want CacheClass
	}{
		{"assets/app.8f4e21c0.js", ClassImmutable},
		{"assets/index.b2d9a1.css", ClassImmutable},
		{"index.html", ClassNormal},
		{"favicon.ico", ClassNormal},
		{"images/logo.png", ClassNormal},
	}
	for _, tt := range tests {
		c := Classify(profile, tt.key, nil)
		if c.Class != tt.want {
			t.Errorf("%s: class = %s, want %s", tt.key, c.Class, tt.want)
		}
	}
}

func TestClassifyCacheControlValues(t *testing.T) {
	profile := framework.Lookup(framework.KindVite)

	immutable := Classify(profile, "assets/app.8f4e21c0.js", nil)
	if immutable.CacheControl != "public,max-age=31536000,immutable" {
		t.Errorf("immutable cache-control = %q", immutable.CacheControl)
	}

	normal := Classify(profile, "index.html", nil)
	if normal.CacheControl != "public,max-age=0,s-maxage=86400,stale-while-revalidate=8640" {
		t.Errorf("normal cache-control = %q", normal.CacheControl)
	}
}

func TestClassifyContentType(t *testing.T) {
	profile := framework.Lookup(framework.KindVite)
	// The .js mapping differs across platform mime tables
	// (text/javascript vs application/javascript), so match loosely.
	tests := []struct {
		key  string
		want string
	}{
		{"index.html", "text/html"},
		{"assets/app.js", "javascript"},
		{"assets/index.css", "text/css"},
		{"data.json", "application/json"},
		{"logo.svg", "image/svg+xml"},
	}
	for _, tt := range tests {
		got := Classify(profile, tt.key, nil).ContentType
		if !strings.Contains(got, tt.want) {
			t.Errorf("%s: content type = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestClassifyUnknownExtension(t *testing.T) {
	profile := framework.Lookup(framework.KindVite)

	// Sniffable body wins over the octet-stream default.
	sniffed := Classify(profile, "LICENSE.weird", []byte("plain text content here"))
	if !strings.HasPrefix(sniffed.ContentType, "text/plain") {
		t.Errorf("sniffed content type = %q", sniffed.ContentType)
	}

	empty := Classify(profile, "opaque.weird", nil)
	if empty.ContentType != "application/octet-stream" {
		t.Errorf("fallback content type = %q", empty.ContentType)
	}
}

func TestClassifyIsPure(t *testing.T) {
	profile := framework.Lookup(framework.KindNuxt)
	a := Classify(profile, "_nuxt/entry.59a1b3.js", nil)
	b := Classify(profile, "_nuxt/entry.59a1b3.js", nil)
	if a != b {
		t.Errorf("classification not stable: %+v vs %+v", a, b)
	}
}

func TestImmutablePrefixIsPerProfile(t *testing.T) {
	nuxt := framework.Lookup(framework.KindNuxt)
	if Classify(nuxt, "assets/app.js", nil).Class != ClassNormal {
		t.Error("nuxt should not treat assets/ as immutable")
	}
	if Classify(nuxt, "_nuxt/app.js", nil).Class != ClassImmutable {
		t.Error("nuxt should treat _nuxt/ as immutable")
	}
}

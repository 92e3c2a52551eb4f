// Package assets scans a build output directory and decides how each file
// is cached and typed when it is written to the object store.
package assets

import (
	"mime"
	"net/http"
	"path"

	"github.com/frontship/frontship/internal/framework"
)

// CacheClass is the caching treatment of an asset.
type CacheClass string

const (
	// ClassImmutable marks hashed bundler output: a new content means a new
	// name, so browsers and edges may keep it for a year.
	ClassImmutable CacheClass = "immutable"

	// ClassNormal marks everything else: browsers revalidate every time,
	// edges keep a copy for a day and may serve slightly stale content
	// while revalidating instead of refetching per request.
	ClassNormal CacheClass = "normal"
)

const (
	immutableCacheControl = "public,max-age=31536000,immutable"
	normalCacheControl    = "public,max-age=0,s-maxage=86400,stale-while-revalidate=8640"
)

// Classification is the upload treatment for one asset.
type Classification struct {
	Class        CacheClass
	CacheControl string
	ContentType  string
}

// Classify decides the cache-control class and content type for a file at
// the given key (POSIX-style, relative to the public directory). The body is
// used only to sniff a content type when the extension is unknown; the same
// inputs always produce the same answer.
func Classify(profile *framework.Profile, key string, body []byte) Classification {
	c := Classification{
		Class:        ClassNormal,
		CacheControl: normalCacheControl,
		ContentType:  contentTypeFor(key, body),
	}
	if profile.ImmutableAsset(key) {
		c.Class = ClassImmutable
		c.CacheControl = immutableCacheControl
	}
	return c
}

func contentTypeFor(key string, body []byte) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	if len(body) > 0 {
		return http.DetectContentType(body)
	}
	return "application/octet-stream"
}

package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/frontship/frontship/internal/models"
)

// nuxt writes a config file at the project root; its presence outranks
// dependency inspection.
var nuxtMarkers = []string{"nuxt.config.ts", "nuxt.config.js", "nuxt.config.mjs"}

// packageManifest is the subset of package.json the detector cares about.
type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (m *packageManifest) has(name string) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	_, ok := m.DevDependencies[name]
	return ok
}

// Resolver detects the framework of a project directory once and memoizes
// the answer; several pipeline phases consult it and the project files must
// not be re-read on every query.
type Resolver struct {
	ProjectDir string

	once    sync.Once
	profile *Profile
	err     error
}

// Resolve returns the project's framework profile. When override is
// non-empty it is honored verbatim; an unknown identifier is a
// ConfigurationError. Without an override, detection runs in fixed priority
// order and returns (nil, nil) when no supported framework is found.
func (r *Resolver) Resolve(override string) (*Profile, error) {
	if override != "" {
		p := Lookup(Kind(override))
		if p == nil {
			return nil, &models.ConfigurationError{
				Field: "framework",
				Value: override,
				Cause: unknownKindError(override),
			}
		}
		return p, nil
	}
	r.once.Do(func() {
		r.profile, r.err = detect(r.ProjectDir)
	})
	return r.profile, r.err
}

func unknownKindError(value string) error {
	return &unsupportedFramework{value: value}
}

type unsupportedFramework struct{ value string }

func (e *unsupportedFramework) Error() string {
	return "unsupported framework '" + e.value + "'; supported: " + joinKinds()
}

func joinKinds() string {
	out := ""
	for i, k := range Kinds() {
		if i > 0 {
			out += ", "
		}
		out += k
	}
	return out
}

func detect(dir string) (*Profile, error) {
	for _, marker := range nuxtMarkers {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return Lookup(KindNuxt), nil
		}
	}

	manifest, err := readManifest(dir)
	if err != nil {
		// No manifest means nothing to detect from; an unreadable or
		// unparsable one is the user's problem to see.
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &models.ConfigurationError{Field: "package.json", Cause: err}
	}

	switch {
	case manifest.has("@react-router/node") || manifest.has("@remix-run/node"):
		return Lookup(KindReactRouter), nil
	case manifest.has("nuxt"):
		return Lookup(KindNuxt), nil
	case manifest.has("nitropack"):
		return Lookup(KindNitro), nil
	case manifest.has("vite"):
		return Lookup(KindVite), nil
	}
	return nil, nil
}

func readManifest(dir string) (*packageManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, err
	}
	var manifest packageManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	return &manifest, nil
}

package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/frontship/frontship/internal/models"
)

// lockfile -> package manager, checked in this order. npm is the fallback.
var lockfiles = []struct {
	file string
	pm   string
}{
	{"pnpm-lock.yaml", "pnpm"},
	{"yarn.lock", "yarn"},
	{"bun.lockb", "bun"},
	{"bun.lock", "bun"},
	{"package-lock.json", "npm"},
}

// resolveBuildCommand returns the explicit override when configured, else a
// "run build" invocation for the project's package manager.
func (o *Orchestrator) resolveBuildCommand() ([]string, error) {
	if o.cfg.BuildCommand != nil {
		if len(o.cfg.BuildCommand) == 0 {
			return nil, &models.ConfigurationError{
				Field: "buildCommand",
				Cause: fmt.Errorf("build command is empty"),
			}
		}
		return o.cfg.BuildCommand, nil
	}
	return []string{detectPackageManager(o.projectDir), "run", "build"}, nil
}

func detectPackageManager(dir string) string {
	for _, lf := range lockfiles {
		if _, err := os.Stat(dir + string(os.PathSeparator) + lf.file); err == nil {
			return lf.pm
		}
	}
	return "npm"
}

// processEnv is swapped out in tests.
var processEnv = os.Environ

// mergeEnv layers the environments: process environment below
// framework-specific variables below explicit user overrides, later layers
// winning. The result is sorted for deterministic process invocation.
func mergeEnv(base []string, layers ...map[string]string) []string {
	merged := map[string]string{}
	for _, kv := range base {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			merged[kv[:i]] = kv[i+1:]
		}
	}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	out := make([]string, 0, len(merged))
	for k, v := range merged {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

func shellString(argv []string) string {
	return strings.Join(argv, " ")
}

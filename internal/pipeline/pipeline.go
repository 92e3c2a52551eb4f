// Package pipeline sequences a deployment: build, package, topology
// synthesis, asset sync around the infrastructure update, plus the
// separately invoked invalidation and teardown operations. Phases run
// strictly in order; the ordering invariant (assets are synced before the
// compute swap when a bucket already exists) is enforced by the phase
// machine itself rather than by host hooks.
package pipeline

import (
	"context"
	"fmt"

	"github.com/frontship/frontship/internal/topology"
)

// Phase is one step of the linear deployment progression. No phase is
// revisited within a run.
type Phase int

const (
	PhaseInit Phase = iota
	PhaseAddFunctions
	PhaseBuild
	PhasePackage
	PhaseSynthesize
	PhasePreUpload
	PhaseApply
	PhasePostUpload
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseInit:         "init",
	PhaseAddFunctions: "add-functions",
	PhaseBuild:        "build",
	PhasePackage:      "package",
	PhaseSynthesize:   "synthesize",
	PhasePreUpload:    "pre-upload",
	PhaseApply:        "apply",
	PhasePostUpload:   "post-upload",
	PhaseDone:         "done",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// advance moves the orchestrator to a later phase. Skipping ahead is fine
// (standalone commands enter mid-sequence); moving backwards or standing
// still is a programming error surfaced loudly.
func (o *Orchestrator) advance(to Phase) error {
	if to <= o.phase {
		return fmt.Errorf("illegal phase transition %s -> %s", o.phase, to)
	}
	o.phase = to
	return nil
}

// RunResult is what the external build process reported.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// ProcessRunner executes an argument vector in a directory with the given
// environment and blocks until it exits.
type ProcessRunner interface {
	Run(ctx context.Context, dir string, argv, env []string) (*RunResult, error)
}

// Archiver packs a directory into a deployable zip artifact.
type Archiver interface {
	Archive(srcDir, dest string) error
}

// ObjectStore is the asset bucket surface the pipeline needs: overwriting
// writes, a listing, and batch deletion.
type ObjectStore interface {
	Put(ctx context.Context, bucket, key string, body []byte, cacheControl, contentType string) error
	List(ctx context.Context, bucket string) ([]string, error)
	DeleteBatch(ctx context.Context, bucket string, keys []string) error
}

// StackIntrospector reads already-deployed infrastructure. Absence of an
// output or resource is reported through the bool, not as an error: the
// pipeline runs against stacks at every lifecycle stage.
type StackIntrospector interface {
	Output(ctx context.Context, stack, name string) (string, bool, error)
	ResourceID(ctx context.Context, stack, logicalID string) (string, bool, error)
}

// Invalidator asks the CDN to discard every cached path of a distribution.
type Invalidator interface {
	InvalidateAll(ctx context.Context, distributionID string) error
}

// FunctionSpec registers one compute unit with the host framework.
type FunctionSpec struct {
	Name     string
	Handler  string
	Artifact string
	Env      map[string]string
}

// TemplateSink receives the configuration fragments this tool emits; the
// host's template compiler consumes them.
type TemplateSink interface {
	AttachTemplate(t *topology.Template) error
	AddFunction(spec FunctionSpec) error
}

// Applier performs the infrastructure update between the pre- and
// post-deploy asset syncs.
type Applier interface {
	Apply(ctx context.Context) error
}

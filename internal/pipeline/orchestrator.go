package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/frontship/frontship/internal/assets"
	"github.com/frontship/frontship/internal/config"
	"github.com/frontship/frontship/internal/framework"
	"github.com/frontship/frontship/internal/models"
	"github.com/frontship/frontship/internal/topology"
)

// uploadConcurrency bounds in-flight object writes within one upload step.
// Writes of distinct keys are independent; the step still completes or
// fails as a unit.
const uploadConcurrency = 8

// Orchestrator drives the deployment pipeline for one resolved
// configuration and framework profile. It holds no state between runs
// beyond the current phase.
type Orchestrator struct {
	cfg        *config.Resolved
	profile    *framework.Profile
	projectDir string
	stack      string

	runner   ProcessRunner
	archiver Archiver
	store    ObjectStore
	stacks   StackIntrospector
	cdn      Invalidator
	sink     TemplateSink

	phase Phase
}

// Deps bundles the orchestrator's collaborators.
type Deps struct {
	Runner   ProcessRunner
	Archiver Archiver
	Store    ObjectStore
	Stacks   StackIntrospector
	CDN      Invalidator
	Sink     TemplateSink
}

// New creates an orchestrator. The profile must already be resolved; an
// undetectable framework is a configuration error the caller reports before
// any phase runs.
func New(cfg *config.Resolved, profile *framework.Profile, projectDir, stack string, deps Deps) *Orchestrator {
	return &Orchestrator{
		cfg:        cfg,
		profile:    profile,
		projectDir: projectDir,
		stack:      stack,
		runner:     deps.Runner,
		archiver:   deps.Archiver,
		store:      deps.Store,
		stacks:     deps.Stacks,
		cdn:        deps.CDN,
		sink:       deps.Sink,
	}
}

// ArtifactPath is where the packaged server bundle lands.
func (o *Orchestrator) ArtifactPath() string {
	return filepath.Join(o.projectDir, ".frontship", "server.zip")
}

func (o *Orchestrator) publicDir() string {
	return filepath.Join(o.projectDir, filepath.FromSlash(o.profile.PublicDir))
}

// AddFunctions registers the server compute unit with the host. It runs
// before template finalization so later phases can reference the resource.
// No-op for static-only profiles.
func (o *Orchestrator) AddFunctions() error {
	if err := o.advance(PhaseAddFunctions); err != nil {
		return err
	}
	if !o.profile.HasServerCompute {
		return nil
	}
	fmt.Println("⚙️  Registering server function")
	return o.sink.AddFunction(FunctionSpec{
		Name:     "server",
		Handler:  o.profile.ComputeEntryPoint,
		Artifact: o.ArtifactPath(),
		Env:      o.cfg.SSREnvironment,
	})
}

// Build runs the framework build and fails the pipeline with the captured
// output when the process exits non-zero.
func (o *Orchestrator) Build(ctx context.Context) error {
	if err := o.advance(PhaseBuild); err != nil {
		return err
	}
	argv, err := o.resolveBuildCommand()
	if err != nil {
		return err
	}
	env := mergeEnv(processEnv(), o.profile.BuildEnv, o.cfg.BuildEnvironment)

	fmt.Printf("🔨 Building site (%s)\n", shellString(argv))
	result, err := o.runner.Run(ctx, o.projectDir, argv, env)
	if err != nil {
		return fmt.Errorf("run build command: %w", err)
	}
	if result.ExitCode != 0 {
		return &models.BuildFailure{
			Command:  argv,
			ExitCode: result.ExitCode,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
		}
	}
	return nil
}

// Package archives the server bundle into the deployable artifact. No-op
// for static-only profiles.
func (o *Orchestrator) Package() error {
	if err := o.advance(PhasePackage); err != nil {
		return err
	}
	if !o.profile.HasServerCompute {
		return nil
	}
	fmt.Println("📦 Packaging server bundle")
	src := filepath.Join(o.projectDir, filepath.FromSlash(o.profile.ServerDir))
	if err := o.archiver.Archive(src, o.ArtifactPath()); err != nil {
		return fmt.Errorf("package server bundle: %w", err)
	}
	return nil
}

// Synthesize builds the distribution topology and attaches it, together
// with the bucket and access-control fragments, to the infrastructure
// template.
func (o *Orchestrator) Synthesize() error {
	if err := o.advance(PhaseSynthesize); err != nil {
		return err
	}
	serverCompute := o.profile.HasServerCompute
	forwardHost := serverCompute && o.cfg.SSRForwardHost

	opts := topology.BuilderRefs(serverCompute, forwardHost)
	opts.Enabled = o.cfg.CDNEnabled
	opts.HTTPVersion = o.cfg.CDNHTTPVersion
	opts.PriceClass = o.cfg.CDNPriceClass
	opts.IPv6 = o.cfg.CDNIPv6
	opts.Comment = o.cfg.CDNDescription
	opts.Aliases = o.cfg.Aliases
	opts.CertificateARN = o.cfg.Certificate
	opts.MinimumTLSVersion = o.cfg.CDNSSLVersion
	opts.ForwardHost = forwardHost

	var entries []assets.Entry
	if serverCompute {
		var err error
		entries, err = assets.TopLevelEntries(o.publicDir())
		if err != nil {
			return err
		}
	}

	topo, warnings, err := topology.Build(o.profile, entries, opts)
	if err != nil {
		return fmt.Errorf("synthesize topology: %w", err)
	}
	for _, w := range warnings {
		fmt.Printf("⚠️  %s\n", w)
	}

	if forwardHost {
		if err := topology.ValidateFunctionCode(topology.HostForwardFunctionCode); err != nil {
			return err
		}
	}

	fmt.Println("🗺️  Attaching distribution topology to template")
	return o.sink.AttachTemplate(topology.FromTopology(topo, serverCompute, forwardHost))
}

// PreUpload syncs assets before the infrastructure update so a visitor who
// hits the old compute version during the swap still sees the new static
// assets. It only applies when a prior deployment already created the
// bucket; on a first deploy there is nothing to upload to and the step is
// skipped.
func (o *Orchestrator) PreUpload(ctx context.Context) error {
	if err := o.advance(PhasePreUpload); err != nil {
		return err
	}
	if !o.profile.HasServerCompute {
		return nil
	}
	bucket, ok, err := o.stacks.Output(ctx, o.stack, topology.OutputBucketName)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("ℹ️  No site bucket yet; skipping pre-deploy asset sync")
		return nil
	}
	fmt.Printf("⬆️  Syncing assets to %s before infrastructure update\n", bucket)
	return o.uploadAssets(ctx, bucket)
}

// PostUpload syncs assets after the infrastructure update. The bucket must
// exist by now; its absence is a malfunction, not a lifecycle state.
func (o *Orchestrator) PostUpload(ctx context.Context) error {
	if err := o.advance(PhasePostUpload); err != nil {
		return err
	}
	bucket, ok, err := o.stacks.Output(ctx, o.stack, topology.OutputBucketName)
	if err != nil {
		return err
	}
	if !ok {
		return &models.PreconditionMissing{Stack: o.stack, Want: topology.OutputBucketName}
	}
	fmt.Printf("⬆️  Syncing assets to %s\n", bucket)
	return o.uploadAssets(ctx, bucket)
}

// Deploy runs the full chain with the given applier performing the
// infrastructure update between the two asset syncs.
func (o *Orchestrator) Deploy(ctx context.Context, applier Applier) error {
	if err := o.AddFunctions(); err != nil {
		return err
	}
	if err := o.Build(ctx); err != nil {
		return err
	}
	if err := o.Package(); err != nil {
		return err
	}
	if err := o.Synthesize(); err != nil {
		return err
	}
	if err := o.PreUpload(ctx); err != nil {
		return err
	}
	if err := o.advance(PhaseApply); err != nil {
		return err
	}
	fmt.Println("🚀 Applying infrastructure changes")
	if err := applier.Apply(ctx); err != nil {
		return err
	}
	if err := o.PostUpload(ctx); err != nil {
		return err
	}
	return o.advance(PhaseDone)
}

// Invalidate discards every cached path of the distribution. A distribution
// that does not exist yet means there is nothing to do.
func (o *Orchestrator) Invalidate(ctx context.Context) error {
	id, ok, err := o.stacks.ResourceID(ctx, o.stack, topology.DistributionResource)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("ℹ️  No distribution found; nothing to invalidate")
		return nil
	}
	fmt.Printf("♻️  Invalidating all paths on distribution %s\n", id)
	return o.cdn.InvalidateAll(ctx, id)
}

// Teardown empties the site bucket so the infrastructure can be torn down.
// An absent bucket is nothing to do. One listing page is fetched; emptying
// a very large bucket may take repeated runs.
func (o *Orchestrator) Teardown(ctx context.Context) error {
	bucket, ok, err := o.stacks.ResourceID(ctx, o.stack, topology.BucketResource)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("ℹ️  No site bucket found; nothing to empty")
		return nil
	}
	keys, err := o.store.List(ctx, bucket)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Printf("ℹ️  Bucket %s is already empty\n", bucket)
		return nil
	}
	fmt.Printf("🗑️  Deleting %d objects from %s\n", len(keys), bucket)
	return o.store.DeleteBatch(ctx, bucket, keys)
}

// uploadAssets scans the public directory and writes every record with its
// classified headers. All writes must succeed for the step to succeed.
func (o *Orchestrator) uploadAssets(ctx context.Context, bucket string) error {
	records, err := assets.Scan(o.profile, o.publicDir())
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for _, record := range records {
		record := record
		g.Go(func() error {
			return o.store.Put(ctx, bucket, record.Key, record.Body, record.CacheControl, record.ContentType)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("upload assets: %w", err)
	}
	fmt.Printf("✅ Uploaded %d assets\n", len(records))
	return nil
}

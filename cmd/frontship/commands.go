package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/urfave/cli/v2"

	awsprovider "github.com/frontship/frontship/internal/cloud/aws"
	"github.com/frontship/frontship/internal/config"
	"github.com/frontship/frontship/internal/framework"
	"github.com/frontship/frontship/internal/pipeline"
	"github.com/frontship/frontship/internal/topology"
	"github.com/frontship/frontship/internal/ui"
)

// run bundles everything a command action needs.
type run struct {
	cfg          *config.Resolved
	profile      *framework.Profile
	orchestrator *pipeline.Orchestrator
	provider     *awsprovider.Provider
	stack        string
}

// newRun resolves configuration and framework once per invocation and wires
// the orchestrator. Remote collaborators are only constructed when the
// command needs them.
func newRun(c *cli.Context, remote bool) (*run, error) {
	projectDir := c.String("project-dir")
	if projectDir == "" {
		var err error
		projectDir, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(projectDir)
	if err != nil {
		return nil, err
	}

	resolver := &framework.Resolver{ProjectDir: projectDir}
	profile, err := resolver.Resolve(cfg.Framework)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("could not detect a supported framework in %s; set 'framework' in frontship.yml (one of: %v)",
			projectDir, framework.Kinds())
	}
	fmt.Printf("🧭 Framework: %s\n", profile.Kind)

	stack := c.String("stack")
	if stack == "" {
		stack = cfg.Stack
	}

	sink, err := pipeline.NewFileSink(filepath.Join(projectDir, ".frontship", "template.json"))
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Runner:   pipeline.ExecRunner{},
		Archiver: pipeline.ZipArchiver{},
		Sink:     sink,
	}
	var provider *awsprovider.Provider
	if remote {
		if stack == "" {
			return nil, fmt.Errorf("no stack configured; pass --stack or set 'stack' in frontship.yml")
		}
		provider, err = awsprovider.NewProvider(c.Context,
			awsprovider.WithProfile(c.String("profile")),
			awsprovider.WithRegion(c.String("region")))
		if err != nil {
			return nil, err
		}
		deps.Store = provider
		deps.Stacks = provider
		deps.CDN = provider
	}

	return &run{
		cfg:          cfg,
		profile:      profile,
		orchestrator: pipeline.New(cfg, profile, projectDir, stack, deps),
		provider:     provider,
		stack:        stack,
	}, nil
}

func runAddFunctions(c *cli.Context) error {
	r, err := newRun(c, false)
	if err != nil {
		return err
	}
	return r.orchestrator.AddFunctions()
}

// runBuild chains the package phase: the server bundle is archived right
// after a successful build.
func runBuild(c *cli.Context) error {
	r, err := newRun(c, false)
	if err != nil {
		return err
	}
	if err := r.orchestrator.Build(c.Context); err != nil {
		return err
	}
	return r.orchestrator.Package()
}

func runSynth(c *cli.Context) error {
	r, err := newRun(c, false)
	if err != nil {
		return err
	}
	return r.orchestrator.Synthesize()
}

func runUpload(c *cli.Context) error {
	r, err := newRun(c, true)
	if err != nil {
		return err
	}
	if c.Bool("pre") {
		return r.orchestrator.PreUpload(c.Context)
	}
	return r.orchestrator.PostUpload(c.Context)
}

func runInvalidate(c *cli.Context) error {
	r, err := newRun(c, true)
	if err != nil {
		return err
	}
	return r.orchestrator.Invalidate(c.Context)
}

func runTeardown(c *cli.Context) error {
	r, err := newRun(c, true)
	if err != nil {
		return err
	}
	if !c.Bool("yes") {
		confirmed := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Empty the site bucket of stack '%s'?", r.stack),
		}
		if err := survey.AskOne(prompt, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted")
			return nil
		}
	}
	return r.orchestrator.Teardown(c.Context)
}

func runStatus(c *cli.Context) error {
	identity, err := awsprovider.ValidateCredentials(c.Context, c.String("profile"))
	if err != nil {
		return err
	}
	fmt.Printf("🔑 Credentials: %s\n", identity)

	r, err := newRun(c, true)
	if err != nil {
		return err
	}
	names := []string{topology.OutputBucketName, topology.OutputSiteURL, topology.OutputCloudFrontDomain}
	values := make([]string, len(names))
	spinner := ui.NewSpinner(nil, "Querying stack "+r.stack)
	spinner.Start()
	for i, name := range names {
		value, ok, err := r.provider.Output(c.Context, r.stack, name)
		if err != nil {
			spinner.Stop()
			return err
		}
		if !ok {
			value = "(not deployed)"
		}
		values[i] = value
	}
	spinner.Stop()
	for i, name := range names {
		fmt.Printf("   %-22s %s\n", name, values[i])
	}
	return nil
}

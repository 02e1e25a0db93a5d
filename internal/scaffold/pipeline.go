package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/fsutil"
)

// step is one unit of work in a scaffold run. creates and wires describe
// the step for ordering checks; they do not affect execution.
type step struct {
	desc    string
	run     func(ctx context.Context) error
	creates []Role
	wires   *Edge
}

// pipeline is the ordered list of steps for one template plus the units and
// references they produce.
type pipeline struct {
	steps []step
	units []Unit // in solution registration order
	edges []Edge

	// scratch is the staging directory of the function template, if one is
	// currently on disk.
	scratch string
}

func (p *pipeline) add(s step) {
	p.steps = append(p.steps, s)
}

// execute runs the steps in order and stops at the first failure. Nothing
// already created is rolled back, except the scratch directory.
func (o *Orchestrator) execute(ctx context.Context, p *pipeline) (*Result, error) {
	if err := checkOrder(p); err != nil {
		return nil, err
	}
	defer o.dropScratch(p)

	for _, s := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		o.log.Info().Msg(s.desc)
		if err := s.run(ctx); err != nil {
			return nil, fmt.Errorf("%s: %w", s.desc, err)
		}
	}

	return &Result{
		FunctionRoot: o.functionRoot,
		ManifestPath: o.repo.ManifestPath,
		Units:        p.units,
		References:   p.edges,
	}, nil
}

// stage runs the function template into a fresh scratch directory under the
// functions directory, on the same filesystem as the final location.
func (o *Orchestrator) stage(ctx context.Context, p *pipeline, unit string) error {
	dir, err := fsutil.MkdirTemp(o.functionsDir, ".forge-"+unit+"-*")
	if err != nil {
		return err
	}
	p.scratch = dir
	o.log.Debug().Str("dir", dir).Msg("staging function template")
	return o.tool.NewFunction(ctx, unit, dir)
}

// discardScratch removes the scratch directory once its content is placed.
func discardScratch(p *pipeline) error {
	if p.scratch == "" {
		return nil
	}
	if err := fsutil.RemoveAll(p.scratch); err != nil {
		return err
	}
	p.scratch = ""
	return nil
}

// dropScratch is the failure-path variant of discardScratch.
func (o *Orchestrator) dropScratch(p *pipeline) {
	if err := discardScratch(p); err != nil {
		o.log.Warn().Err(err).Msg("could not remove staging directory")
	}
}

// expectProject reports a generator that did not leave the project file
// where the layout requires it.
func expectProject(u Unit) error {
	if _, err := os.Stat(u.ProjectFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &fsutil.FilesystemError{Op: "locate project", Path: u.ProjectFile, Err: err}
		}
		return &fsutil.FilesystemError{Op: "stat", Path: u.ProjectFile, Err: err}
	}
	return nil
}

func (o *Orchestrator) simplePipeline() *pipeline {
	src := o.newUnit(RoleLambda)
	tests := o.newUnit(RoleLambdaTests)
	p := &pipeline{units: []Unit{src, tests}}

	p.add(step{
		desc: fmt.Sprintf("generating base structure for %s", src.Name),
		run: func(ctx context.Context) error {
			return o.stage(ctx, p, src.Name)
		},
	})
	p.add(step{
		desc:    "flattening directory structure",
		creates: []Role{src.Role, tests.Role},
		run: func(ctx context.Context) error {
			if err := fsutil.Merge(filepath.Join(p.scratch, "src"), filepath.Dir(src.Dir)); err != nil {
				return err
			}
			if err := fsutil.Merge(filepath.Join(p.scratch, "test"), filepath.Dir(tests.Dir)); err != nil {
				return err
			}
			if err := discardScratch(p); err != nil {
				return err
			}
			if err := expectProject(src); err != nil {
				return err
			}
			return expectProject(tests)
		},
	})
	o.addRegistration(p)
	return p
}

func (o *Orchestrator) layeredPipeline() *pipeline {
	app := o.newUnit(RoleApplication)
	domain := o.newUnit(RoleDomain)
	infra := o.newUnit(RoleInfrastructure)
	appTests := o.newUnit(RoleApplicationTests)
	domainTests := o.newUnit(RoleDomainTests)

	p := &pipeline{
		units: []Unit{app, domain, infra, appTests, domainTests},
		edges: LayeredEdges(),
	}

	for _, lib := range []Unit{domain, infra} {
		p.add(step{
			desc:    fmt.Sprintf("generating %s", lib.Name),
			creates: []Role{lib.Role},
			run: func(ctx context.Context) error {
				return o.tool.NewLibrary(ctx, lib.Name, lib.Dir)
			},
		})
	}

	p.add(step{
		desc: fmt.Sprintf("generating %s", app.Name),
		run: func(ctx context.Context) error {
			return o.stage(ctx, p, app.Name)
		},
	})
	// The function template's own test project is discarded with the
	// scratch directory; the layered template generates its own below.
	p.add(step{
		desc:    fmt.Sprintf("relocating %s", app.Name),
		creates: []Role{app.Role},
		run: func(ctx context.Context) error {
			if err := fsutil.Move(filepath.Join(p.scratch, "src", app.Name), app.Dir); err != nil {
				return err
			}
			if err := discardScratch(p); err != nil {
				return err
			}
			return expectProject(app)
		},
	})

	for _, t := range []Unit{domainTests, appTests} {
		p.add(step{
			desc:    fmt.Sprintf("generating %s", t.Name),
			creates: []Role{t.Role},
			run: func(ctx context.Context) error {
				return o.tool.NewTests(ctx, t.Name, t.Dir)
			},
		})
	}

	byRole := unitsByRole(p.units)
	for _, e := range p.edges {
		from, to := byRole[e.From], byRole[e.To]
		p.add(step{
			desc:  fmt.Sprintf("referencing %s from %s", to.Name, from.Name),
			wires: &e,
			run: func(ctx context.Context) error {
				return o.tool.AddReference(ctx, from.ProjectFile, to.ProjectFile)
			},
		})
	}

	o.addRegistration(p)
	return p
}

// addRegistration appends the solution registration of every unit, as one
// batched call or one call per project.
func (o *Orchestrator) addRegistration(p *pipeline) {
	if !o.sequential {
		projects := make([]string, len(p.units))
		for i, u := range p.units {
			projects[i] = u.ProjectFile
		}
		p.add(step{
			desc: "adding projects to solution",
			run: func(ctx context.Context) error {
				return o.tool.AddToManifest(ctx, o.repo.ManifestPath, projects...)
			},
		})
		return
	}

	for _, u := range p.units {
		p.add(step{
			desc: fmt.Sprintf("adding %s to solution", u.Name),
			run: func(ctx context.Context) error {
				return o.tool.AddToManifest(ctx, o.repo.ManifestPath, u.ProjectFile)
			},
		})
	}
}

// checkOrder verifies that every wiring step only references units created
// by an earlier step.
func checkOrder(p *pipeline) error {
	created := make(map[Role]bool)
	for _, s := range p.steps {
		if s.wires != nil {
			if !created[s.wires.From] || !created[s.wires.To] {
				return fmt.Errorf("step %q wires %s before both units exist", s.desc, s.wires)
			}
		}
		for _, r := range s.creates {
			created[r] = true
		}
	}
	return nil
}

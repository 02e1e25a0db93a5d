package toolchain

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/process"
)

// ProjectExt is the extension of the project files the templates produce.
const ProjectExt = ".csproj"

// Templates names the `dotnet new` short names used per unit kind.
type Templates struct {
	Function string
	Library  string
	Tests    string
}

// DefaultTemplates are the Amazon.Lambda.Templates and SDK defaults.
var DefaultTemplates = Templates{
	Function: "lambda.EmptyFunction",
	Library:  "classlib",
	Tests:    "xunit",
}

// Dotnet drives the dotnet CLI through a process.Runner.
type Dotnet struct {
	Binary    string
	Dir       string // working directory for every invocation, normally the repository root
	Templates Templates
	Runner    process.Runner
}

// New returns a Dotnet using binary (default "dotnet") run from dir.
func New(r process.Runner, binary, dir string, t Templates) *Dotnet {
	if binary == "" {
		binary = "dotnet"
	}
	if t.Function == "" {
		t.Function = DefaultTemplates.Function
	}
	if t.Library == "" {
		t.Library = DefaultTemplates.Library
	}
	if t.Tests == "" {
		t.Tests = DefaultTemplates.Tests
	}
	return &Dotnet{Binary: binary, Dir: dir, Templates: t, Runner: r}
}

// ProjectFile returns the project file path for unit inside dir.
func (d *Dotnet) ProjectFile(dir, unit string) string {
	return filepath.Join(dir, unit+ProjectExt)
}

// NewFunction runs the function template. It writes <outDir>/src/<unit>/
// and <outDir>/test/<unit>.Tests/.
func (d *Dotnet) NewFunction(ctx context.Context, unit, outDir string) error {
	return d.newFromTemplate(ctx, d.Templates.Function, unit, outDir)
}

// NewLibrary runs the class library template directly into outDir.
func (d *Dotnet) NewLibrary(ctx context.Context, unit, outDir string) error {
	return d.newFromTemplate(ctx, d.Templates.Library, unit, outDir)
}

// NewTests runs the test project template directly into outDir.
func (d *Dotnet) NewTests(ctx context.Context, unit, outDir string) error {
	return d.newFromTemplate(ctx, d.Templates.Tests, unit, outDir)
}

func (d *Dotnet) newFromTemplate(ctx context.Context, template, unit, outDir string) error {
	_, err := d.run(ctx, "new", template, "-n", unit, "-o", outDir)
	return err
}

// AddReference makes the from project reference each of to.
func (d *Dotnet) AddReference(ctx context.Context, from string, to ...string) error {
	if len(to) == 0 {
		return fmt.Errorf("add reference to %s: no target projects", from)
	}
	args := append([]string{"add", from, "reference"}, to...)
	_, err := d.run(ctx, args...)
	return err
}

// AddToManifest registers projects with the solution file.
func (d *Dotnet) AddToManifest(ctx context.Context, manifest string, projects ...string) error {
	if len(projects) == 0 {
		return fmt.Errorf("add to %s: no projects", filepath.Base(manifest))
	}
	args := append([]string{"sln", manifest, "add"}, projects...)
	_, err := d.run(ctx, args...)
	return err
}

func (d *Dotnet) run(ctx context.Context, args ...string) (string, error) {
	return d.Runner.Run(ctx, process.Command{
		Name: d.Binary,
		Args: args,
		Dir:  d.Dir,
	})
}

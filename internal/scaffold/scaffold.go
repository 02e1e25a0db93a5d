package scaffold

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/repository"
	"github.com/rs/zerolog"
)

// DefaultFunctionsDir is the repository-relative directory holding functions.
const DefaultFunctionsDir = "functions"

// ErrInvalidName is returned for names that cannot be used as a project name.
var ErrInvalidName = errors.New("invalid function name")

var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateName checks that name is usable as a .NET project and namespace name.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w %q: must be dot-separated identifiers such as Billing or Billing.Batch", ErrInvalidName, name)
	}
	return nil
}

// Toolchain is the set of external tools a scaffold run drives.
type Toolchain interface {
	// NewFunction writes <outDir>/src/<unit>/ and <outDir>/test/<unit>.Tests/.
	NewFunction(ctx context.Context, unit, outDir string) error
	// NewLibrary and NewTests write the project directly into outDir.
	NewLibrary(ctx context.Context, unit, outDir string) error
	NewTests(ctx context.Context, unit, outDir string) error
	AddReference(ctx context.Context, from string, to ...string) error
	AddToManifest(ctx context.Context, manifest string, projects ...string) error
	ProjectFile(dir, unit string) string
}

// Spec is what the caller asks for.
type Spec struct {
	Name string
	Kind Kind
}

// Options configures an Orchestrator.
type Options struct {
	StartDir     string // where repository discovery starts; defaults to the working directory
	Repository   repository.Options
	FunctionsDir string // relative to the repository root; defaults to DefaultFunctionsDir
	// SequentialManifest registers one project per solution call instead of
	// a single batched call.
	SequentialManifest bool
	Toolchain          Toolchain
	Logger             *zerolog.Logger
}

// Orchestrator scaffolds one function into one repository.
type Orchestrator struct {
	spec         Spec
	repo         *repository.Context
	functionsDir string
	functionRoot string
	tool         Toolchain
	sequential   bool
	log          zerolog.Logger
}

// Result describes a completed scaffold run.
type Result struct {
	FunctionRoot string
	ManifestPath string
	Units        []Unit
	References   []Edge
}

// Plan describes what a run would do without doing it.
type Plan struct {
	FunctionRoot string
	ManifestPath string
	Steps        []string
	Units        []Unit
	References   []Edge
}

// New resolves the repository and its solution file. It runs no external
// tool, so a missing or ambiguous solution fails before any side effect.
func New(spec Spec, opts Options) (*Orchestrator, error) {
	if err := ValidateName(spec.Name); err != nil {
		return nil, err
	}
	if spec.Kind != Simple && spec.Kind != Layered {
		return nil, fmt.Errorf("%w, got %s", ErrUnknownKind, spec.Kind)
	}
	if opts.Toolchain == nil {
		return nil, errors.New("scaffold: no toolchain configured")
	}

	start := opts.StartDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		start = wd
	}

	repo, err := repository.Open(start, opts.Repository)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	functionsDir := opts.FunctionsDir
	if functionsDir == "" {
		functionsDir = DefaultFunctionsDir
	}
	functionsDir = filepath.Join(repo.Root, functionsDir)

	o := &Orchestrator{
		spec:         spec,
		repo:         repo,
		functionsDir: functionsDir,
		functionRoot: filepath.Join(functionsDir, spec.Name),
		tool:         opts.Toolchain,
		sequential:   opts.SequentialManifest,
		log:          log,
	}
	o.log.Info().Str("solution", filepath.Base(repo.ManifestPath)).Msg("targeting solution file")
	return o, nil
}

// Repository returns the resolved repository.
func (o *Orchestrator) Repository() repository.Context { return *o.repo }

// FunctionRoot returns <root>/<functions dir>/<name>.
func (o *Orchestrator) FunctionRoot() string { return o.functionRoot }

// Run scaffolds the function using the template selected by Spec.Kind.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	switch o.spec.Kind {
	case Simple:
		return o.CreateSimple(ctx)
	case Layered:
		return o.CreateLayered(ctx)
	default:
		return nil, fmt.Errorf("%w, got %s", ErrUnknownKind, o.spec.Kind)
	}
}

// CreateSimple generates <Name>.Lambda and its test project.
func (o *Orchestrator) CreateSimple(ctx context.Context) (*Result, error) {
	return o.execute(ctx, o.simplePipeline())
}

// CreateLayered generates the Application, Domain and Infrastructure
// projects, their two test projects, and the references between them.
func (o *Orchestrator) CreateLayered(ctx context.Context) (*Result, error) {
	return o.execute(ctx, o.layeredPipeline())
}

// Plan returns the steps and units of a run without executing anything.
func (o *Orchestrator) Plan() *Plan {
	p := o.pipelineFor(o.spec.Kind)
	steps := make([]string, len(p.steps))
	for i, s := range p.steps {
		steps[i] = s.desc
	}
	return &Plan{
		FunctionRoot: o.functionRoot,
		ManifestPath: o.repo.ManifestPath,
		Steps:        steps,
		Units:        p.units,
		References:   p.edges,
	}
}

func (o *Orchestrator) pipelineFor(k Kind) *pipeline {
	if k == Layered {
		return o.layeredPipeline()
	}
	return o.simplePipeline()
}

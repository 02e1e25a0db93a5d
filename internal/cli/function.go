package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/process"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/repository"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/scaffold"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/toolchain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// kindFlag makes --type reject unknown templates during flag parsing.
type kindFlag struct {
	kind scaffold.Kind
}

var _ pflag.Value = (*kindFlag)(nil)

func (f *kindFlag) String() string { return f.kind.String() }

func (f *kindFlag) Set(s string) error {
	k, err := scaffold.ParseKind(s)
	if err != nil {
		return err
	}
	f.kind = k
	return nil
}

func (f *kindFlag) Type() string { return "simple|layered" }

var (
	functionName   string
	functionKind   = kindFlag{kind: scaffold.Simple}
	functionDryRun bool
)

func init() {
	functionCmd.Flags().StringVarP(&functionName, "name", "n", "", "Function name, e.g. Billing (required)")
	functionCmd.Flags().VarP(&functionKind, "type", "t", "Function template: simple or layered")
	functionCmd.Flags().BoolVar(&functionDryRun, "dry-run", false, "Print the steps without running anything")
	_ = functionCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(functionCmd)
}

var functionCmd = &cobra.Command{
	Use:   "function",
	Short: "Scaffold a new Lambda function",
	Long: `Scaffold a new .NET Lambda function under functions/<Name> and register it
with the repository's solution file.

Templates:
  simple   <Name>.Lambda and <Name>.Lambda.Tests
  layered  <Name>.Application, <Name>.Domain, <Name>.Infrastructure and
           their tests, with project references between them ("ddd" also works)

Examples:
  forge function -n Billing
  forge function --name Orders --type layered`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		spec := scaffold.Spec{Name: functionName, Kind: functionKind.kind}

		fmt.Fprintf(out, "Starting to forge '%s' with '%s' function template...\n", spec.Name, spec.Kind)

		s, err := newSession()
		if err != nil {
			return err
		}
		log := s.logger(cmd)

		runner := process.NewExecRunner(out)
		runner.Log = &log
		tool := toolchain.New(runner, s.settings.Dotnet.Binary, s.workDir(), toolchain.Templates{
			Function: s.settings.Templates.Function,
			Library:  s.settings.Templates.Library,
			Tests:    s.settings.Templates.Tests,
		})

		o, err := scaffold.New(spec, scaffold.Options{
			StartDir: s.startDir,
			Repository: repository.Options{
				Marker:          s.settings.Repository.Marker,
				ManifestPattern: s.settings.Manifest.Pattern,
			},
			FunctionsDir:       s.settings.Layout.FunctionsDir,
			SequentialManifest: !s.settings.Manifest.Batch,
			Toolchain:          tool,
			Logger:             &log,
		})
		if err != nil {
			return err
		}

		if functionDryRun {
			printPlan(out, o.Plan())
			return nil
		}

		result, err := o.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Fprintln(out, successLine(out, fmt.Sprintf("Successfully forged function '%s'.", spec.Name)))
		printUnits(out, result.FunctionRoot, result.Units)
		return nil
	},
}

func printPlan(w io.Writer, p *scaffold.Plan) {
	fmt.Fprintf(w, "Solution: %s\n", p.ManifestPath)
	fmt.Fprintf(w, "Function root: %s\n", p.FunctionRoot)
	fmt.Fprintln(w, "Steps:")
	for i, s := range p.Steps {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, s)
	}
	printUnits(w, p.FunctionRoot, p.Units)
	if len(p.References) > 0 {
		fmt.Fprintln(w, "References:")
		for _, e := range p.References {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

func printUnits(w io.Writer, functionRoot string, units []scaffold.Unit) {
	fmt.Fprintln(w, countLine("project", len(units)))
	for _, u := range units {
		rel, err := filepath.Rel(functionRoot, u.ProjectFile)
		if err != nil {
			rel = u.ProjectFile
		}
		fmt.Fprintf(w, "  %s\n", filepath.ToSlash(rel))
	}
}

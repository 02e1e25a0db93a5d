package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/config"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/process"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/repository"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/toolchain"
	"github.com/spf13/cobra"
)

var (
	checkConfig bool
	checkRepo   bool
	checkDotnet bool
)

func init() {
	doctorCmd.Flags().BoolVar(&checkConfig, "check-config", false, "Validate the user and repository config files")
	doctorCmd.Flags().BoolVar(&checkRepo, "check-repo", false, "Verify the repository root and its single solution file")
	doctorCmd.Flags().BoolVar(&checkDotnet, "check-dotnet", false, "Verify the dotnet CLI and SDK version")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that functions can be scaffolded here",
	Long:  `Run diagnostic checks on the configuration, the repository layout and the dotnet SDK.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no specific flag, run all checks.
		all := !checkConfig && !checkRepo && !checkDotnet

		d := &doctor{out: cmd.OutOrStdout()}
		d.run(cmd.Context(), all || checkConfig, all || checkRepo, all || checkDotnet)
		if d.failed > 0 {
			return fmt.Errorf("%w: %s failed", errCheckFailed, printer.Sprintf("%d check(s)", d.failed))
		}
		return nil
	},
}

type doctor struct {
	out    io.Writer
	failed int
}

func (d *doctor) report(err error, okMsg string) bool {
	if err != nil {
		d.failed++
		msg := strings.ReplaceAll(err.Error(), "\n", "\n         ")
		fmt.Fprintln(d.out, statusLine(d.out, false, msg))
		return false
	}
	fmt.Fprintln(d.out, statusLine(d.out, true, okMsg))
	return true
}

func (d *doctor) run(ctx context.Context, cfgCheck, repoCheck, dotnetCheck bool) {
	start := repoDir
	if start == "" {
		wd, err := os.Getwd()
		if !d.report(err, "") {
			return
		}
		start = wd
	}

	// Settings are needed by every other check, so a broken user file stops here.
	settings, err := config.Load("")
	if cfgCheck {
		fmt.Fprintln(d.out, "Config check:")
		if !d.report(err, config.FilePath()+" is valid or absent") {
			return
		}
	} else if err != nil {
		d.report(err, "")
		return
	}

	root, locateErr := repository.Locate(start, settings.Repository.Marker)
	if locateErr == nil {
		repoSettings, err := config.Load(root)
		if cfgCheck {
			d.report(err, config.RepoFilePath(root)+" is valid or absent")
		}
		if err == nil {
			settings = repoSettings
		}
	}

	if repoCheck {
		fmt.Fprintln(d.out, "Repository check:")
		if d.report(locateErr, "repository root: "+root) {
			manifest, err := repository.FindManifest(root, settings.Manifest.Pattern)
			d.report(err, "solution file: "+manifest)
		}
	}

	if dotnetCheck {
		fmt.Fprintln(d.out, "Dotnet check:")
		d.checkDotnet(ctx, settings, root)
	}
}

func (d *doctor) checkDotnet(ctx context.Context, settings *config.Settings, dir string) {
	path, err := exec.LookPath(settings.Dotnet.Binary)
	if err != nil {
		d.report(fmt.Errorf("%s not found: %w", settings.Dotnet.Binary, err), "")
		return
	}
	d.report(nil, fmt.Sprintf("%s found at %s", settings.Dotnet.Binary, path))

	tool := toolchain.New(process.NewExecRunner(io.Discard), path, dir, toolchain.Templates{})
	version, err := tool.SDKVersion(ctx)
	if err != nil {
		d.report(err, "")
		return
	}
	if err := toolchain.CheckMinimum(version, settings.Dotnet.MinVersion); err != nil {
		d.report(err, "")
		return
	}
	if settings.Dotnet.MinVersion == "" {
		d.report(nil, fmt.Sprintf("dotnet SDK %s", version))
		return
	}
	d.report(nil, fmt.Sprintf("dotnet SDK %s (minimum %s)", version, settings.Dotnet.MinVersion))
}

// errCheckFailed is reported when doctor found at least one problem.
var errCheckFailed = errors.New("doctor found problems")

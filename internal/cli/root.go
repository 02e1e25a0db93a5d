package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/branding"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/config"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/logging"
	"github.com/ko-sho14/lambda-scaffold-dotnet/internal/repository"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

// Global flags.
var (
	verbose bool
	repoDir string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds .NET AWS Lambda functions inside a repository: it runs the
dotnet templates, normalises the generated layout under functions/<Name>,
wires project references and registers every project with the solution file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every external command")
	rootCmd.PersistentFlags().StringVar(&repoDir, "repo", "", "Directory to start repository discovery from (default: current directory)")
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed here; the caller only maps them to an exit code.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// session is the per-invocation state shared by the subcommands.
type session struct {
	settings *config.Settings
	startDir string
	root     string // empty when no repository was found
}

// newSession resolves the start directory and loads the settings. The
// repository-level config file is merged only when a repository is found;
// reporting a missing repository is left to the caller.
func newSession() (*session, error) {
	start := repoDir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		start = wd
	}

	settings, err := config.Load("")
	if err != nil {
		return nil, err
	}

	root, err := repository.Locate(start, settings.Repository.Marker)
	if err != nil {
		return &session{settings: settings, startDir: start}, nil
	}

	settings, err = config.Load(root)
	if err != nil {
		return nil, err
	}
	return &session{settings: settings, startDir: start, root: root}, nil
}

// workDir is where external tools run: the repository root when known.
func (s *session) workDir() string {
	if s.root != "" {
		return s.root
	}
	return s.startDir
}

func (s *session) logger(cmd *cobra.Command) zerolog.Logger {
	level := s.settings.Log.Level
	if verbose {
		level = zerolog.LevelDebugValue
	}
	return logging.New(cmd.OutOrStdout(), level)
}

//go:build integration

package integration_test

import (
	"bufio"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakeDotnet imitates the parts of the dotnet CLI a scaffold run uses. Every
// invocation is appended to $FAKE_DOTNET_LOG; references go to
// $FAKE_DOTNET_REFS as "from -> to" lines. A first argument equal to
// $FAKE_DOTNET_FAIL exits 3.
const fakeDotnet = `#!/bin/sh
echo "$*" >> "$FAKE_DOTNET_LOG"
if [ -n "$FAKE_DOTNET_FAIL" ] && [ "$1" = "$FAKE_DOTNET_FAIL" ]; then
  echo "simulated $1 failure" >&2
  exit 3
fi
case "$1" in
--version)
  echo "8.0.100"
  ;;
new)
  tmpl=$2; unit=$4; out=$6
  if [ "$tmpl" = "lambda.EmptyFunction" ]; then
    mkdir -p "$out/src/$unit" "$out/test/$unit.Tests"
    echo "<Project />" > "$out/src/$unit/$unit.csproj"
    echo "public class Function {}" > "$out/src/$unit/Function.cs"
    echo "<Project />" > "$out/test/$unit.Tests/$unit.Tests.csproj"
  else
    mkdir -p "$out"
    echo "<Project />" > "$out/$unit.csproj"
  fi
  echo "The template \"$tmpl\" was created successfully."
  ;;
add)
  from=$2; shift 3
  for p in "$@"; do echo "$from -> $p" >> "$FAKE_DOTNET_REFS"; done
  ;;
sln)
  sln=$2; shift 3
  for p in "$@"; do echo "$p" >> "$sln"; done
  ;;
*)
  echo "unknown command: $*" >&2
  exit 1
  ;;
esac
`

// testEnv holds the paths of one sandboxed scaffold run.
type testEnv struct {
	HomeDir  string // HOME, so no real ~/.forge is read
	RepoDir  string // repository root containing .git
	Dotnet   string // path to the fake dotnet script
	LogFile  string // one line per dotnet invocation
	RefsFile string // one line per project reference
}

// setupTestEnv creates a repository with the given solution files and a fake
// dotnet. The env vars are restored after the test.
func setupTestEnv(t *testing.T, solutions ...string) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake dotnet is a POSIX shell script")
	}

	tools := t.TempDir()
	env := &testEnv{
		HomeDir:  t.TempDir(),
		RepoDir:  t.TempDir(),
		Dotnet:   filepath.Join(tools, "dotnet"),
		LogFile:  filepath.Join(tools, "calls.log"),
		RefsFile: filepath.Join(tools, "refs.log"),
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv("FAKE_DOTNET_LOG", env.LogFile)
	t.Setenv("FAKE_DOTNET_REFS", env.RefsFile)
	t.Setenv("FAKE_DOTNET_FAIL", "")

	writeFile(t, env.Dotnet, fakeDotnet)
	if err := os.Chmod(env.Dotnet, 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.Mkdir(filepath.Join(env.RepoDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, s := range solutions {
		writeFile(t, filepath.Join(env.RepoDir, s), "")
	}
	return env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// readLines returns the lines of path, or nil if it does not exist.
func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatal(err)
	}
	return lines
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected path not to exist: %s", path)
	}
}

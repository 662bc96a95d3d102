package cobra

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
)

// executeCmd runs the root command with the given args and returns stdout, stderr, and error.
func executeCmd(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// executeCmdStdin is executeCmd with stdin.
func executeCmdStdin(stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	rootCmd := NewRootCmd()
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_Help(t *testing.T) {
	tests := []string{"--help", "-h"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !strings.Contains(stdout, "tracecheck") {
				t.Error("expected 'tracecheck' in help output")
			}
			if !strings.Contains(stdout, "Available Commands") {
				t.Error("expected 'Available Commands' in help output")
			}
			for _, cmd := range []string{"verify", "parse", "categories", "header", "runs", "show", "completion", "version"} {
				if !strings.Contains(stdout, cmd) {
					t.Errorf("expected '%s' command in help output", cmd)
				}
			}
		})
	}
}

func TestRoot_Version(t *testing.T) {
	tests := []string{"--version", "version"}
	for _, arg := range tests {
		t.Run(arg, func(t *testing.T) {
			stdout, _, err := executeCmd(arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(stdout, "tracecheck") {
				t.Error("expected 'tracecheck' in version output")
			}
		})
	}
}

func TestRoot_UnknownCommand(t *testing.T) {
	_, _, err := executeCmd("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected 'unknown command' in error, got: %v", err)
	}
}

func TestVerifyCmd_Help(t *testing.T) {
	stdout, _, err := executeCmd("verify", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, flag := range []string{"--profile", "--subject", "--section", "--match", "--raw", "--record", "--events", "--jobs"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("expected '%s' flag in help output", flag)
		}
	}
}

func TestVerifyCmd_MissingArg(t *testing.T) {
	_, _, err := executeCmd("verify")
	if err == nil {
		t.Fatal("expected error when log is missing")
	}
}

const cliTrace = `capturing trace... done
TRACE:
# tracer: nop
 com.example.app-100 (100) [000] d..1 1.000: tracing_mark_write: B|100|inflate
 com.example.app-100 (100) [000] d..1 1.001: tracing_mark_write: B|100|draw
`

func TestVerifyCmd_Stdin(t *testing.T) {
	t.Setenv(RecordDirEnv, "")

	stdout, _, err := executeCmdStdin(cliTrace,
		"verify", "--subject", "com.example.app", "--match", "suffix",
		"--section", "inflate", "--section", "draw", "-")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if stdout != "ok verify - matched=2/2 pid=100 record=none\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestVerifyCmd_ProfileAndRecord(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "trace.txt")
	if err := os.WriteFile(logPath, []byte(cliTrace), 0o644); err != nil {
		t.Fatal(err)
	}
	profilePath := filepath.Join(dir, "p.yaml")
	profile := "name: draw\nsubject: app\nrequired_sections: [draw, inflate]\n"
	if err := os.WriteFile(profilePath, []byte(profile), 0o644); err != nil {
		t.Fatal(err)
	}
	recordDir := filepath.Join(dir, "evidence")

	_, stderr, err := executeCmd("verify", "--profile", profilePath, "--record", recordDir, logPath)
	if errors.GetCode(err) != errors.ESectionsMissing {
		t.Fatalf("verify error = %v, want %s", err, errors.ESectionsMissing)
	}
	if !strings.Contains(stderr, "fail verify "+logPath) {
		t.Errorf("stderr = %q", stderr)
	}

	stdout, _, err := executeCmd("runs", "--record", recordDir)
	if err != nil {
		t.Fatalf("runs failed: %v", err)
	}
	if !strings.Contains(stdout, "E_SECTIONS_MISSING") || !strings.Contains(stdout, "1/2") {
		t.Errorf("runs output:\n%s", stdout)
	}
}

func TestVerifyCmd_RecordFromEnv(t *testing.T) {
	recordDir := t.TempDir()
	t.Setenv(RecordDirEnv, recordDir)

	_, _, err := executeCmdStdin(cliTrace, "verify", "--subject", "app", "--section", "draw", "--match", "suffix", "-")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(recordDir, "runs"))
	if err != nil || len(entries) != 1 {
		t.Errorf("runs dir entries = %v, %v; want one run", entries, err)
	}
}

func TestParseCmd_JSON(t *testing.T) {
	stdout, _, err := executeCmdStdin(cliTrace, "parse", "--json", "-")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if got := strings.Count(stdout, "\n"); got != 2 {
		t.Errorf("got %d JSON lines, want 2:\n%s", got, stdout)
	}
	if !strings.Contains(stdout, `"grammar":"tgid"`) {
		t.Errorf("expected grammar name in output:\n%s", stdout)
	}
}

func TestHeaderCmd(t *testing.T) {
	stdout, _, err := executeCmdStdin(cliTrace, "header", "-")
	if err != nil {
		t.Fatalf("header failed: %v", err)
	}
	if stdout != "ok header -\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestCategoriesCmd_Missing(t *testing.T) {
	_, _, err := executeCmdStdin("  gfx - Graphics\n", "categories", "-")
	if errors.GetCode(err) != errors.ECategoriesMissing {
		t.Errorf("categories error = %v, want %s", err, errors.ECategoriesMissing)
	}
}

func TestShowCmd_NotFound(t *testing.T) {
	_, _, err := executeCmd("show", "--record", t.TempDir(), "nope")
	if errors.GetCode(err) != errors.ERunNotFound {
		t.Errorf("show error = %v, want %s", err, errors.ERunNotFound)
	}
}

// Completion tests

func TestCompletionCmd_Bash(t *testing.T) {
	stdout, _, err := executeCmd("completion", "bash")
	if err != nil {
		t.Fatalf("completion bash failed: %v", err)
	}
	if !strings.Contains(stdout, "__tracecheck") {
		t.Error("bash completion script missing function name")
	}
	if !strings.Contains(stdout, "complete") {
		t.Error("bash completion script missing 'complete' directive")
	}
}

func TestCompletionCmd_Zsh(t *testing.T) {
	stdout, _, err := executeCmd("completion", "zsh")
	if err != nil {
		t.Fatalf("completion zsh failed: %v", err)
	}
	if !strings.Contains(stdout, "#compdef") {
		t.Error("zsh completion script missing #compdef directive")
	}
}

func TestCompletionCmd_Output(t *testing.T) {
	path := filepath.Join(t.TempDir(), "completions", "tracecheck")
	stdout, _, err := executeCmd("completion", "--output", path, "bash")
	if err != nil {
		t.Fatalf("completion --output failed: %v", err)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("completion file not written: %v", err)
	}
}

func TestCompletionCmd_InvalidShell(t *testing.T) {
	_, _, err := executeCmd("completion", "fish")
	if err == nil {
		t.Fatal("expected error for unsupported shell")
	}
	if errors.GetCode(err) != errors.EUsage {
		t.Errorf("code = %q, want %q", errors.GetCode(err), errors.EUsage)
	}
}

func TestCompletionCmd_MissingArg(t *testing.T) {
	_, _, err := executeCmd("completion")
	if err == nil {
		t.Fatal("expected error when shell is missing")
	}
}

// Test that global --verbose flag is accessible

func TestGlobalVerboseFlag(t *testing.T) {
	globalOpts = GlobalOpts{}

	_, _, _ = executeCmd("--verbose", "version")

	if !GetGlobalOpts().Verbose {
		t.Error("expected verbose flag to be set")
	}
	globalOpts = GlobalOpts{}
}

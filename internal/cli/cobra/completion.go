package cobra

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func newCompletionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts.
By default, prints the script to stdout.
Use --output to write directly to a file.

Arguments:
  shell    target shell: bash or zsh

Installation:

  bash (with bash-completion package):
    tracecheck completion --output ~/.local/share/bash-completion/completions/tracecheck bash

  zsh (with fpath):
    tracecheck completion zsh > ~/.zsh/completions/_tracecheck
    # ensure ~/.zsh/completions is in fpath before compinit

After installation, restart your shell.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			var genErr error
			switch args[0] {
			case "bash":
				genErr = cmd.Root().GenBashCompletionV2(&buf, true)
			case "zsh":
				genErr = cmd.Root().GenZshCompletion(&buf)
			default:
				return errors.New(errors.EUsage, fmt.Sprintf("unsupported shell: %s (supported: bash, zsh)", args[0]))
			}
			if genErr != nil {
				return errors.Wrap(errors.EInternal, "failed to generate completion script", genErr)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := fs.WriteFileAtomic(fs.NewRealFS(), output, buf.Bytes(), 0o644); err != nil {
				return errors.Wrap(errors.EInternal, fmt.Sprintf("failed to write %s", output), err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write completion script to file instead of stdout")

	return cmd
}

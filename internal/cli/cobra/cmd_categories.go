package cobra

import (
	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/tracecheck/internal/commands"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
)

func newCategoriesCmd() *cobra.Command {
	var opts commands.CategoriesOpts

	cmd := &cobra.Command{
		Use:   "categories <file>",
		Short: "Check atrace --list_categories output",
		Long: `Check that every category the profile requires is listed.

Arguments:
  file    output of "atrace --list_categories"; "-" reads stdin`,
		Args:    cobra.ExactArgs(1),
		PreRunE: rejectTerminalStdin,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.File = args[0]
			return commands.Categories(fs.NewRealFS(), cmd.InOrStdin(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "", "YAML profile supplying required_categories")
	cmd.Flags().BoolVar(&opts.List, "list", false, "print every parsed category")

	return cmd
}

func newHeaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <file>",
		Short: "Check the banner of a bare atrace run",
		Long: `Check that the output of "atrace" with no arguments starts with
"capturing trace... done", "TRACE:" and "# tracer: nop".

Arguments:
  file    captured output; "-" reads stdin`,
		Args:    cobra.ExactArgs(1),
		PreRunE: rejectTerminalStdin,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Header(fs.NewRealFS(), cmd.InOrStdin(), args[0], cmd.OutOrStdout())
		},
	}
}

package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/solatis/formlogic/internal/ruleset"
	"github.com/solatis/formlogic/internal/types"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Check a rule document for structural and semantic errors",
		Long: `Loads a rule document, checks it against the document schema and then
validates every rule against the declared fields: unknown fields and
conditions, missing targets, circular dependencies, invalid patterns and
formulas.`,
		Example: `  formlogic validate signup.yaml
  formlogic validate --strict checkout.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			doc, err := ruleset.Load(path)
			if err != nil {
				return err
			}
			root.logger.Debug().
				Str("document", path).
				Int("fields", len(doc.Fields)).
				Int("rules", len(doc.Rules)).
				Msg("document loaded")

			result := doc.Validate()
			printValidation(cmd.OutOrStdout(), path, doc, result)

			if !result.Valid {
				return fmt.Errorf("%s: %d validation error(s)", path, len(result.Errors))
			}
			if strict && len(result.Warnings) > 0 {
				return fmt.Errorf("%s: %d warning(s) in strict mode", path, len(result.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func printValidation(w io.Writer, path string, doc *ruleset.Document, result types.ValidationResult) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, msg := range result.Errors {
		fmt.Fprintf(w, "%s %s\n", red("error:"), msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "%s %s\n", yellow("warning:"), msg)
	}

	icon := red("✖")
	if result.Valid {
		icon = green("✔")
	}
	fmt.Fprintf(w, "%s %s: %d fields, %d rules, %d errors, %d warnings\n",
		icon, bold(path), len(doc.Fields), len(doc.Rules), len(result.Errors), len(result.Warnings))
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/solatis/formlogic/internal/rules"
	"github.com/solatis/formlogic/internal/ruleset"
	"github.com/solatis/formlogic/internal/types"
)

func newEvalCmd(root *rootOptions) *cobra.Command {
	var (
		sets   []string
		output string
	)

	cmd := &cobra.Command{
		Use:   "eval <document>",
		Short: "Evaluate a rule document and print the resulting form state",
		Long: `Initializes field states from the document, applies its initial data and
every --set assignment in order, and prints the evaluation context: form
data, field states and the per-rule results of the last pass.

Values given with --set are converted to the field's type: numbers for
number fields, booleans for checkboxes, text otherwise. Values for fields
the document does not declare are read as JSON literals when they parse,
and as plain strings when they do not.`,
		Example: `  formlogic eval signup.yaml --set age=21
  formlogic eval checkout.json --set qty=3 --set price=9.95 --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "json" && output != "yaml" {
				return fmt.Errorf("unsupported output format %q (want json or yaml)", output)
			}

			doc, err := ruleset.Load(args[0])
			if err != nil {
				return err
			}

			assignments := make([]assignment, 0, len(sets))
			for _, s := range sets {
				a, err := parseAssignment(doc, s)
				if err != nil {
					return err
				}
				assignments = append(assignments, a)
			}

			ctx, err := evaluate(doc, assignments, root.engineOptions())
			if err != nil {
				return err
			}
			return writeContext(cmd.OutOrStdout(), ctx, output)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field assignment as field=value (repeatable, applied in order)")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json, yaml)")
	return cmd
}

type assignment struct {
	fieldID string
	value   any
}

// parseAssignment splits field=value and converts the value for the field.
func parseAssignment(doc *ruleset.Document, s string) (assignment, error) {
	id, raw, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	if !ok || id == "" {
		return assignment{}, fmt.Errorf("invalid --set %q (want field=value)", s)
	}

	field, known := doc.Field(id)
	if !known {
		return assignment{fieldID: id, value: literal(raw)}, nil
	}

	var value any = raw
	if strings.HasPrefix(strings.TrimSpace(raw), "[") {
		var list []any
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			value = list
		}
	}

	res, err := rules.Coerce(value, field.Type)
	if err != nil {
		return assignment{}, fmt.Errorf("--set %s: %q is not a valid %s value: %w", id, raw, field.Type, err)
	}
	if res.IsNull {
		return assignment{fieldID: id}, nil
	}
	return assignment{fieldID: id, value: res.Value}, nil
}

func literal(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

// evaluate runs the document's rules over its defaults, its initial data
// and then each assignment in order.
func evaluate(doc *ruleset.Document, assignments []assignment, opts []rules.Option) (types.EvaluationContext, error) {
	en, err := doc.NewEngine(opts...)
	if err != nil {
		return types.EvaluationContext{}, err
	}

	data := en.Context().FormData
	for k, v := range doc.Data {
		data[k] = v
	}
	ctx := en.SetFormData(data)

	for _, a := range assignments {
		ctx = en.UpdateFormData(a.fieldID, a.value)
	}
	return ctx, nil
}

func writeContext(w io.Writer, ctx types.EvaluationContext, format string) error {
	switch format {
	case "yaml":
		out, err := yaml.Marshal(ctx)
		if err != nil {
			return fmt.Errorf("failed to encode context: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ctx)
	}
}

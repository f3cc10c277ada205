package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/solatis/formlogic/internal/rules"
	"github.com/solatis/formlogic/internal/ruleset"
)

func newOrderCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "order <document>",
		Short: "List rules in evaluation order",
		Long: `Prints the document's rules in the order the engine evaluates them:
priority descending, ties in document order. Rules without a priority
count as priority 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := ruleset.Load(args[0])
			if err != nil {
				return err
			}
			root.logger.Debug().Str("document", args[0]).Int("rules", len(doc.Rules)).Msg("document loaded")

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tPRIORITY\tID\tSOURCES\tACTION\tTARGETS")
			for i, r := range rules.OrderRules(doc.Rules) {
				id := r.ID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					i+1, r.EffectivePriority(), id,
					strings.Join(r.SourceFieldIDs(), ","), r.Action,
					strings.Join(r.TargetFieldIDs, ","))
			}
			return tw.Flush()
		},
	}
}

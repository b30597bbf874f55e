package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/weaver/internal/catalog"
	"github.com/simonhull/firebird-suite/weaver/internal/selection"
	"github.com/simonhull/firebird-suite/weaver/pkg/output"
)

// newListCmd creates the 'list' command.
func newListCmd(a *app) *cobra.Command {
	var crit selection.Criteria
	var typeName string
	var hidden, rightClick bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates in the catalog",
		Long: `Lists templates that apply to the given criteria. Empty criteria match
everything.

Examples:
  weaver list
  weaver list -t Blank -f Prism --type page
  weaver list --right-click`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			var preds []selection.Predicate
			if typeName != "" {
				t, err := catalog.ParseTemplateType(typeName)
				if err != nil {
					return err
				}
				preds = append(preds, selection.OfType(t))
			}
			if rightClick {
				preds = append(preds, selection.RightClickItems())
			}

			records, err := selection.Select(p.Catalog(), crit, selection.Options{
				IncludeHidden: hidden,
				Predicate:     selection.And(preds...),
			})
			if err != nil {
				return err
			}
			if len(records) == 0 {
				output.Warn(fmt.Sprintf("No templates match %s", crit.Short()))
				return nil
			}

			for _, r := range records {
				var tags []string
				tags = append(tags, r.Type.String())
				if r.IsHidden {
					tags = append(tags, "hidden")
				}
				if r.RightClickEnabled {
					tags = append(tags, "addable")
				}
				if r.IsGroupExclusiveSelection {
					tags = append(tags, "exclusive:"+r.Group)
				}
				output.KeyValue(r.Name, strings.Join(tags, ", "))
				if len(r.Dependencies) > 0 {
					output.Verbose(fmt.Sprintf("%s depends on %s", r.Name, strings.Join(r.Dependencies, ", ")))
				}
			}
			output.Info(fmt.Sprintf("%d template(s)", len(records)))
			return nil
		},
	}

	criteriaFlags(cmd, &crit)
	f := cmd.Flags()
	f.StringVar(&typeName, "type", "", "Only templates of this type (project, page, feature, service, composition, other)")
	f.BoolVar(&hidden, "hidden", false, "Include hidden templates")
	f.BoolVar(&rightClick, "right-click", false, "Only templates that can be added to an existing project")
	return cmd
}

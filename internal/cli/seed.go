package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xdev-exe/cortyx/internal/usecase/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a DocType catalog and its sample documents",
		Long: `Ensure catalog constraints, upsert every DocType of the catalog file and
create its sample documents. Documents whose name already exists are skipped,
so seeding can be repeated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := seed.LoadCatalog(file)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), rootOpts.Env)
			if err != nil {
				return err
			}
			defer a.close()

			report, err := seed.New(a.schema, a.documents).Apply(cmd.Context(), catalog)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range report.Results {
				if r.Err != nil {
					fmt.Fprintf(out, "  %-8s %s/%s: %v\n", r.Status, r.DocType, r.Name, r.Err)
					continue
				}
				fmt.Fprintf(out, "  %-8s %s/%s\n", r.Status, r.DocType, r.Name)
			}
			fmt.Fprintf(out, "seeded %d doctypes: %d created, %d skipped, %d failed\n",
				report.DocTypes,
				report.Count(seed.StatusCreated),
				report.Count(seed.StatusSkipped),
				report.Count(seed.StatusFailed),
			)
			if n := report.Count(seed.StatusFailed); n > 0 {
				return fmt.Errorf("%d documents failed to seed", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "config/schema/erp.yaml", "catalog file")
	return cmd
}

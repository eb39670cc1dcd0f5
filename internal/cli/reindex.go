package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewReindexCommand creates the reindex command.
func NewReindexCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		docType  string
		recreate bool
	)

	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the knowledge search index from the graph store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, rootOpts.Env)
			if err != nil {
				return err
			}
			defer a.close()

			if a.knowledge == nil {
				return errors.New("knowledge search is disabled; set search.enabled and valkey.addrs")
			}
			if recreate {
				if err := a.knowledge.RecreateIndex(ctx); err != nil {
					return err
				}
			}

			names := []string{docType}
			if docType == "" {
				if names, err = a.schema.DocTypeNames(ctx); err != nil {
					return err
				}
			}

			total := 0
			for _, name := range names {
				n, err := a.knowledge.Reindex(ctx, name)
				if err != nil {
					return fmt.Errorf("reindex %s after %d documents: %w", name, n, err)
				}
				a.logger.Info("doctype reindexed", zap.String("doctype", name), zap.Int("documents", n))
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %d\n", name, n)
				total += n
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d documents across %d doctypes\n", total, len(names))
			return nil
		},
	}

	cmd.Flags().StringVar(&docType, "doctype", "", "reindex a single DocType (default: all)")
	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop and recreate the vector index first, e.g. after changing HNSW settings")
	return cmd
}

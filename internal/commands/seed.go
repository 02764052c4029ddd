package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/lookups"
)

func newSeedCommand(gf *globalFlags) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load projects, products and subgroups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := lookups.Default()
			if file != "" {
				var err error
				if catalog, err = lookups.LoadFile(file); err != nil {
					return err
				}
			}

			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()

			q := ws.store.Queries()
			if err := q.SaveLookups(cmd.Context(), catalog); err != nil {
				return err
			}
			projects, products, subgroups, err := q.CountLookups(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Lookups: %d projects, %d products, %d subgroups\n", projects, products, subgroups)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "lookups YAML file (default built-in catalog)")
	return cmd
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

func newBulkUpdateCommand(gf *globalFlags) *cobra.Command {
	var ids []string
	var status, project, user string

	cmd := &cobra.Command{
		Use:   "bulk-update",
		Short: "Set status or project on many transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes store.BulkChanges
			if cmd.Flags().Changed("status") {
				s := model.TxStatus(strings.TrimSpace(status))
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				changes.Status = &s
			}
			if cmd.Flags().Changed("project") {
				p := strings.TrimSpace(project)
				changes.ProjectID = &p
			}
			if changes.Status == nil && changes.ProjectID == nil {
				return fmt.Errorf("nothing to update: set --status or --project")
			}

			ws, err := openWorkspace(cmd, gf)
			if err != nil {
				return err
			}
			defer ws.Close()
			changes.User = ws.user(user)

			n, err := ws.store.Queries().BulkUpdate(cmd.Context(), ids, changes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d transactions\n", n)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma separated transaction IDs")
	_ = cmd.MarkFlagRequired("ids")
	cmd.Flags().StringVar(&status, "status", "", "new status")
	cmd.Flags().StringVar(&project, "project", "", "new project ID (empty clears)")
	cmd.Flags().StringVar(&user, "user", "", "user recorded on the change (default import.user)")
	return cmd
}

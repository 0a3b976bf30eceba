package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/soyeahso/boothbot/internal/leads"
	"github.com/spf13/cobra"
)

func newLeadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Inspect captured leads",
	}

	cmd.AddCommand(newLeadsListCmd())
	cmd.AddCommand(newLeadsShowCmd())

	return cmd
}

func newLeadsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored leads, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := leads.NewStore(paths.Leads, log)
			files, err := store.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "no leads stored")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FILE\tNAME\tEMAIL\tCOMPANY\tSCORE")
			for _, f := range files {
				lead, err := store.Load(f)
				if err != nil {
					if errors.Is(err, leads.ErrCorrupt) {
						fmt.Fprintf(tw, "%s\t(corrupt)\t\t\t\n", filepath.Base(f))
						continue
					}
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					filepath.Base(f), lead.Contact.Name, lead.Contact.Email, lead.Contact.Company, lead.Intent.Score)
			}
			return tw.Flush()
		},
	}
}

func newLeadsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print one stored lead as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lead, err := leads.NewStore(paths.Leads, log).Load(args[0])
			if err != nil {
				if errors.Is(err, leads.ErrNotFound) {
					return fmt.Errorf("no lead named %q in %s", args[0], paths.Leads)
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(lead)
		},
	}
}

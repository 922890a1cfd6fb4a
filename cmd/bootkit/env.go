package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEnvCommand(a *app) *cobra.Command {
	envCmd := &cobra.Command{
		Use:   "env",
		Short: "Inspect and select environments",
	}
	envCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List environments; * marks the current one",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cur, err := a.mgr.Current(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(a.mgr.Environments()))
				for _, e := range a.mgr.Environments() {
					mark := ""
					if e.Name == cur.Name {
						mark = "*"
					}
					rows = append(rows, []string{mark, e.Name, e.Domain})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"", "Name", "Domain"}, rows))
				return nil
			},
		},
		&cobra.Command{
			Use:   "current",
			Short: "Print the current environment",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cur, err := a.mgr.Current(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", cur.Name, cur.Domain)
				return nil
			},
		},
		&cobra.Command{
			Use:     "use <name>",
			Short:   "Select an environment by name",
			Example: "  bootkit env use Stage\n  bootkit --store file --store-path ~/.config/bootkit/settings.json env use Production",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := a.mgr.Use(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printer.Green(fmt.Sprintf("using %s (%s)", env.Name, env.Domain))
				return nil
			},
		},
	)
	return envCmd
}

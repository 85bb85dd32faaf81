// Package profiles lists the available extraction profiles
package profiles

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"fjacquet/camt-xlsx/cmd/root"

	"github.com/spf13/cobra"
)

var verbose bool

// Cmd represents the profiles command
var Cmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the available extraction profiles",
	Long: `List the built-in extraction profiles and those loaded from --profile-file.

With --verbose the columns of every profile and the paths they are read from
are printed as well.`,
	Args: cobra.NoArgs,
	RunE: profilesFunc,
}

func init() {
	Cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the columns of every profile")
}

func profilesFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	defaultName := c.GetConfig().Profile.Name

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tMESSAGE\tENTRY\tTRANSACTION\tDESCRIPTION")
	for _, p := range c.GetRegistry().All() {
		name := p.Name
		if name == defaultName {
			name += " (default)"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			name, dash(p.Message), p.EntryTag, dash(p.TransactionTag), p.Description)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !verbose {
		return nil
	}
	for _, p := range c.GetRegistry().All() {
		cmd.Printf("\n%s:\n", p.Name)
		for _, f := range p.Fields {
			cmd.Printf("  %-36s %-11s %-8s %s\n", f.Column, f.Scope, f.Kind, strings.Join(f.Paths, " | "))
		}
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

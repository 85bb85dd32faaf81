// Package inspect reports the message type and size of camt documents
package inspect

import (
	"errors"
	"fmt"
	"io"

	"fjacquet/camt-xlsx/cmd/common"
	"fjacquet/camt-xlsx/cmd/root"
	"fjacquet/camt-xlsx/internal/dateutils"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/profile"
	"fjacquet/camt-xlsx/internal/xmlutils"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

// Cmd represents the inspect command
var Cmd = &cobra.Command{
	Use:   "inspect [files or directories...]",
	Short: "Show message type, account and entry count of camt documents",
	Long: `Inspect camt XML documents without extracting them.

For every document the detected message type, the message id, the creation
time, the account IBAN and the number of entries and transaction details are
printed, together with the built-in profile that matches the message type.

Example:
  camt-xlsx inspect input/`,
	Args: cobra.MinimumNArgs(1),
	RunE: inspectFunc,
}

func inspectFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	inputs, err := common.ReadInputs(args)
	if err != nil {
		return err
	}

	var errs error
	for _, in := range inputs {
		d, err := xmlutils.DetectMessage(in.Data)
		if err != nil {
			root.GetLogger().WithError(err).Warn("Could not detect message type",
				logging.F(logging.FieldDocument, in.Name))
			cmd.PrintErrf("%s: %v\n", in.Name, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", in.Name, err))
			continue
		}
		printDetection(cmd.OutOrStdout(), in.Name, d, c.GetRegistry())
	}
	return errs
}

func printDetection(w io.Writer, name string, d xmlutils.Detection, registry *profile.Registry) {
	created := d.CreationTime
	if t, err := dateutils.ParseTimestamp(d.CreationTime); err == nil {
		created = dateutils.ToSwissFormat(t)
	}
	suggested := "-"
	if p := registry.ForMessage(d.Message); p != nil {
		suggested = p.Name
	}

	_, _ = fmt.Fprintf(w, "%s\n", name)
	_, _ = fmt.Fprintf(w, "  Message:      %s", d.Message)
	if d.Version != "" {
		_, _ = fmt.Fprintf(w, " (version %s)", d.Version)
	}
	_, _ = fmt.Fprintln(w)
	if d.Namespace != "" {
		_, _ = fmt.Fprintf(w, "  Namespace:    %s\n", d.Namespace)
	}
	_, _ = fmt.Fprintf(w, "  Message ID:   %s\n", orDash(d.MessageID))
	_, _ = fmt.Fprintf(w, "  Created:      %s\n", orDash(created))
	_, _ = fmt.Fprintf(w, "  IBAN:         %s\n", orDash(d.IBAN))
	_, _ = fmt.Fprintf(w, "  Entries:      %d\n", d.Entries)
	_, _ = fmt.Fprintf(w, "  Transactions: %d\n", d.Transactions)
	_, _ = fmt.Fprintf(w, "  Profile:      %s\n", suggested)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

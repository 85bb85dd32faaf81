// Package convert handles the conversion of camt documents into a spreadsheet
package convert

import (
	"errors"
	"fmt"

	"fjacquet/camt-xlsx/cmd/common"
	"fjacquet/camt-xlsx/cmd/root"

	"github.com/spf13/cobra"
)

var (
	output  string
	format  string
	policy  string
	flatten bool
)

// Cmd represents the convert command
var Cmd = &cobra.Command{
	Use:   "convert [files or directories...]",
	Short: "Convert camt documents into one Excel or CSV file",
	Long: `Convert camt XML documents into one spreadsheet.

Every argument is either a document or a directory; directories contribute all
their .xml files. All documents are processed with the same profile and their
rows are written to a single output file. Documents that cannot be read are
reported and skipped, the command then exits with an error after writing the
rows of the others.

Example:
  camt-xlsx convert -p camt054 -o avis.xlsx input/
  camt-xlsx convert --format csv --policy skip-record statement.xml
  camt-xlsx convert --flatten -o export.xlsx data.xml

With --flatten no profile is used: every child of the document root becomes
one row and every leaf element below it a column named by its element path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: convertFunc,
}

func init() {
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from configuration)")
	Cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: xlsx or csv")
	Cmd.Flags().StringVar(&policy, "policy", "", "Field error policy: null-field, skip-record or abort-document")
	Cmd.Flags().BoolVar(&flatten, "flatten", false, "Flatten every child of the document root into one row, without a profile")
}

func convertFunc(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return errors.New("container not initialized")
	}
	log := root.GetLogger()

	summary, err := common.Convert(cmd.Context(), c, common.ConvertOptions{
		Inputs:  args,
		Output:  output,
		Profile: root.SharedFlags.Profile,
		Format:  format,
		Policy:  policy,
		Flatten: flatten,
	}, log)
	if summary == nil {
		return err
	}

	for _, d := range summary.Result.Documents {
		switch {
		case d.Err != nil:
			cmd.PrintErrf("FAILED  %s: %v\n", d.Name, d.Err)
		case d.Empty():
			cmd.Printf("EMPTY   %s\n", d.Name)
		default:
			cmd.Printf("OK      %s (%d rows)\n", d.Name, len(d.Records))
		}
	}
	if summary.OutputFile != "" {
		cmd.Printf("Wrote %d rows to %s\n", len(summary.Result.Records()), summary.OutputFile)
	} else {
		cmd.Println("No records found, nothing written.")
	}

	if err != nil {
		return fmt.Errorf("%d of %d documents failed: %w",
			summary.Result.Failed(), len(summary.Result.Documents), err)
	}
	return nil
}

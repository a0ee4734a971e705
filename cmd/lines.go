package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/codetour/internal/lines"
)

var (
	linesStrict bool
	linesJSON   bool
)

var linesCmd = &cobra.Command{
	Use:   "lines <spec>",
	Short: "Parse a line range such as \"3,5-8,12\"",
	Long: `Parse a line range the way tour steps do and print the normalised form.
Malformed tokens are skipped with a warning unless --strict is set.

Examples:
  codetour lines "12, 5-8,3"        # 3,5-8,12
  codetour lines --json "1-3"       # [1,2,3]
  codetour lines --strict "1,x"     # error`,
	Args: cobra.ExactArgs(1),
	RunE: runLines,
}

func init() {
	rootCmd.AddCommand(linesCmd)

	linesCmd.Flags().BoolVar(&linesStrict, "strict", false, "Fail on malformed tokens")
	linesCmd.Flags().BoolVar(&linesJSON, "json", false, "Print the lines as a JSON array")
}

func runLines(cmd *cobra.Command, args []string) error {
	var set lines.LineSet
	if linesStrict {
		parsed, err := lines.Parse(args[0])
		if err != nil {
			return err
		}
		set = parsed
	} else {
		parsed, warnings := lines.ParseLenient(args[0])
		for _, w := range warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
		}
		set = parsed
	}

	if linesJSON {
		data, err := json.Marshal(set)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), set.String())
	return nil
}

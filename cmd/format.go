package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/jsondiff/internal/compare"
	"github.com/oakwood-commons/jsondiff/internal/formatter"
	"github.com/oakwood-commons/jsondiff/internal/jsontree"
)

func newFormatCmd(root *rootOptions) *cobra.Command {
	var (
		inputFormat string
		write       bool
		check       bool
	)
	cmd := &cobra.Command{
		Use:   "format [FILE]",
		Short: "Print a document in canonical two-space form",
		Long: `Re-serialize a JSON or YAML document the way compare does before diffing:
two-space indentation, one member per line, numbers in shortest form.
Object key order is preserved.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arg := singleDocumentArg(args)
			if (write || check) && (arg == stdinArg || isURL(arg)) {
				return fmt.Errorf("--write and --check need a file argument")
			}
			format, err := jsontree.ParseInputFormat(inputFormat)
			if err != nil {
				return err
			}

			reader := newDocumentReader(cmd, root)
			defer reader.Close()
			text, err := reader.Read(cmd.Context(), arg)
			if err != nil {
				return err
			}
			v, err := compare.Parse(text, format, "")
			if err != nil {
				return err
			}
			canonical := jsontree.Format(v) + "\n"

			switch {
			case check:
				if canonical != text {
					return fmt.Errorf("%s is not canonically formatted", arg)
				}
				return nil
			case write:
				if canonical == text {
					return nil
				}
				info, err := os.Stat(arg)
				if err != nil {
					return err
				}
				if err := os.WriteFile(arg, []byte(canonical), info.Mode().Perm()); err != nil {
					return err
				}
				infof(cmd, "formatted %s", arg)
				return nil
			}
			out := cmd.OutOrStdout()
			_, err = fmt.Fprint(out, formatter.ColorJSON(canonical, noColor(cmd, out)))
			return err
		},
	}
	cmd.Flags().StringVar(&inputFormat, "format", "json", "input format: json|yaml|auto")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	cmd.Flags().BoolVar(&check, "check", false, "fail when the file is not canonically formatted")
	cmd.MarkFlagsMutuallyExclusive("write", "check")
	return cmd
}

package cmd

import (
	"fmt"
	"os"

	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/parser"
	"github.com/UpperCi/buzz/internal/symbols"
	"github.com/UpperCi/buzz/internal/types"
	"github.com/spf13/cobra"
)

var checkListGlobals bool

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse buzz source and report diagnostics only",
	Long: `Parse buzz source code and print any diagnostics produced by the
parser, the placeholder engine, or name resolution, in the spec §6
"<snippet>\n<file>:<line>:<col>: Error: <message>\n" format.

Exits non-zero if parsing failed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkListGlobals, "list-globals", false, "list every exported global name, in natural sort order")
}

func runCheck(cmd *cobra.Command, args []string) error {
	source, fileName, err := readSource(args)
	if err != nil {
		return err
	}

	registry := types.NewRegistry()
	symTable := symbols.NewTable()
	scanner := lexer.New(source)
	program, errs := parser.Parse(scanner, fileName, false, registry, symTable)

	for _, e := range errs {
		fmt.Fprint(os.Stderr, parser.FormatDiagnostic(fileName, scanner, e))
	}

	if checkListGlobals {
		for _, name := range symbols.SortedExportedNames(symTable) {
			fmt.Println(name)
		}
	}

	if program == nil {
		return fmt.Errorf("%d error(s)", len(errs))
	}
	fmt.Fprintln(os.Stderr, "OK")
	return nil
}

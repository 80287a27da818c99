package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/UpperCi/buzz/internal/ast"
	"github.com/UpperCi/buzz/internal/lexer"
	"github.com/UpperCi/buzz/internal/parser"
	"github.com/UpperCi/buzz/internal/symbols"
	"github.com/UpperCi/buzz/internal/types"
	"github.com/spf13/cobra"
)

var astPretty bool

var astCmd = &cobra.Command{
	Use:   "ast [file]",
	Short: "Parse buzz source and dump the resolved AST as JSON",
	Long: `Parse buzz source code, resolving names and placeholder types as it
goes, and dump the result using the spec's JSON AST contract (one object
per node carrying "node", "type_def", and kind-specific fields).

If no file is provided, reads from stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAST,
}

func init() {
	rootCmd.AddCommand(astCmd)
	astCmd.Flags().BoolVar(&astPretty, "pretty", false, "pretty-print the JSON output")
}

func runAST(cmd *cobra.Command, args []string) error {
	source, fileName, err := readSource(args)
	if err != nil {
		return err
	}

	registry := types.NewRegistry()
	symTable := symbols.NewTable()
	scanner := lexer.New(source)
	program, errs := parser.Parse(scanner, fileName, false, registry, symTable)

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Fprintln(os.Stderr, registry.DebugDump())
	}

	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprint(os.Stderr, parser.FormatDiagnostic(fileName, scanner, e))
		}
	}
	if program == nil {
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	out, err := ast.DumpJSON(program, astPretty)
	if err != nil {
		return fmt.Errorf("dumping AST: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func readSource(args []string) (source, fileName string, err error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}

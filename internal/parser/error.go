package parser

import (
	"fmt"
	"strings"

	"github.com/UpperCi/buzz/internal/lexer"
)

// ParserError is a structured parse-time diagnostic (spec §7).
type ParserError struct {
	Message string
	Code    string
	Pos     lexer.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s at %d:%d", e.Message, e.Pos.Line, e.Pos.Column)
}

// Error code constants, one per spec §7 failure category.
const (
	ErrUnexpectedToken  = "E_UNEXPECTED_TOKEN"
	ErrExpectedIdent    = "E_EXPECTED_IDENT"
	ErrExpectedType     = "E_EXPECTED_TYPE"
	ErrInvalidExpr      = "E_INVALID_EXPRESSION"
	ErrInvalidAssign    = "E_INVALID_ASSIGNMENT_TARGET"
	ErrDuplicateName    = "E_DUPLICATE_NAME"
	ErrUnknownName      = "E_UNKNOWN_NAME"
	ErrTypeMismatch     = "E_TYPE_MISMATCH"
	ErrArity            = "E_ARITY"
	ErrImport           = "E_IMPORT"
	ErrTopLevelOnly     = "E_TOP_LEVEL_ONLY"
	ErrAssignToConstant = "E_ASSIGN_TO_CONSTANT"
)

// FormatDiagnostic renders err per spec §6's exact diagnostic format:
// "<snippet>\n<file>:<line>:<col>: Error: <message>\n", where snippet is
// up to 3 source lines around err.Pos with a caret under the column.
func FormatDiagnostic(fileName string, scanner lexer.Scanner, err *ParserError) string {
	var sb strings.Builder

	start := err.Pos.Line - 1
	if start < 1 {
		start = 1
	}
	lines := scanner.GetLines(start, 3)
	offset := err.Pos.Line - start
	for i, line := range lines {
		sb.WriteString(line)
		sb.WriteString("\n")
		if i == offset {
			if err.Pos.Column > 0 {
				sb.WriteString(strings.Repeat(" ", err.Pos.Column-1))
			}
			sb.WriteString("^\n")
		}
	}
	fmt.Fprintf(&sb, "%s:%d:%d: Error: %s\n", fileName, err.Pos.Line, err.Pos.Column, err.Message)
	return sb.String()
}

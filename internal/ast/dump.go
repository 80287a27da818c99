package ast

import (
	"encoding/json"

	"github.com/tidwall/pretty"
)

// DumpJSON renders n as its JSON AST dump: compact by default,
// reformatted with tidwall/pretty when pretty is requested (the
// `buzz ast --pretty` CLI flag).
func DumpJSON(n Node, prettyPrint bool) ([]byte, error) {
	b, err := json.Marshal(n.Dump())
	if err != nil {
		return nil, err
	}
	if prettyPrint {
		return pretty.Pretty(b), nil
	}
	return b, nil
}

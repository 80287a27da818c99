package symbols

import (
	"reflect"
	"testing"

	"github.com/UpperCi/buzz/internal/types"
)

func TestSortedExportedNames(t *testing.T) {
	tbl := NewTable()
	tbl.globals = []*Global{
		{Name: "item10", Type: types.NewRegistry().Void(), Exported: true},
		{Name: "item2", Type: types.NewRegistry().Void(), Exported: true},
		{Name: "hiddenOne", Type: types.NewRegistry().Void(), Exported: true, Hidden: true},
		{Name: "notExported", Type: types.NewRegistry().Void()},
		{Name: "renamed", ExportAlias: "item1", Type: types.NewRegistry().Void(), Exported: true},
	}

	got := SortedExportedNames(tbl)
	want := []string{"item1", "item2", "item10"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SortedExportedNames() = %v, want %v", got, want)
	}
}

package gmt

import (
	"context"
	"fmt"
	"strings"

	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// ContourAliases are the parameters Contour accepts.
var ContourAliases = Aliases{
	{Flag: "A", Name: "annotation"},
	{Flag: "B", Name: "frame"},
	{Flag: "C", Name: "levels"},
	{Flag: "G", Name: "label_placement"},
	{Flag: "J", Name: "projection"},
	{Flag: "L", Name: "triangular_mesh_pen"},
	{Flag: "N", Name: "no_clip"},
	{Flag: "R", Name: "region", Sep: "/"},
	{Flag: "S", Name: "skip"},
	{Flag: "W", Name: "pen"},
	{Flag: "X", Name: "xshift"},
	{Flag: "Y", Name: "yshift"},
	{Flag: "i", Name: "incols", Sep: ","},
	{Flag: "l", Name: "label"},
	{Flag: "p", Name: "perspective", Sep: "/"},
}

// Contour runs the contour module on data: a file name, a matrix of x, y, z
// rows, or vectors or a table with exactly the x, y and z columns.
func Contour(ctx context.Context, s *Session, data any, params Params) error {
	kind, err := DataKind(data)
	if err != nil {
		return err
	}
	if err := checkXYZ(kind, data); err != nil {
		return err
	}
	args, err := BuildArgs(ContourAliases, params)
	if err != nil {
		return err
	}
	return s.WithVirtualFile(ctx, data, func(name string) error {
		return s.CallModule(ctx, "contour", strings.TrimSpace(name+" "+args))
	})
}

func checkXYZ(kind Kind, data any) error {
	var n int
	switch kind {
	case KindVectors:
		n = len(data.(Vectors))
	case KindTable:
		n = data.(*table.Table).NumCols()
	default:
		return nil
	}
	if n != 3 {
		return fmt.Errorf("%w: contour needs x, y and z columns, got %d", ErrInvalidInput, n)
	}
	return nil
}

package gmt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/gmt-go/pkg/gmt"
	"github.com/geobind/gmt-go/pkg/gmt/gmttest"
	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// captureInput registers a module that decodes its first argument.
func captureInput(lib *gmttest.Library, module string) *gmttest.Dataset {
	got := &gmttest.Dataset{}
	lib.Module(module, func(c *gmttest.Call) int32 {
		ds, err := c.Input(c.Fields()[0])
		if err != nil {
			return gmttest.StatusError
		}
		*got = *ds
		return 0
	})
	return got
}

func TestBindFilePassesThrough(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	vf, err := s.Bind(ctx, "@earth_relief_01d")
	require.NoError(t, err)
	assert.Equal(t, "@earth_relief_01d", vf.Name())
	assert.Equal(t, gmt.KindFile, vf.Kind())
	assert.Equal(t, gmt.Input, vf.Direction())
	assert.Empty(t, s.Bindings())
	assert.Empty(t, lib.OpenVirtualFiles())
	require.NoError(t, vf.Release(ctx))

	_, err = s.Bind(ctx, "")
	require.ErrorIs(t, err, gmt.ErrInvalidInput)
}

func TestBindMatrix(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	got := captureInput(lib, "info")
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	inputs := map[string]any{
		"Matrix":      gmt.Matrix{Rows: 3, Cols: 2, Data: []float64{1, 2, 3, 4, 5, 6}},
		"*Matrix":     &gmt.Matrix{Rows: 3, Cols: 2, Data: []float64{1, 2, 3, 4, 5, 6}},
		"[][]float64": [][]float64{{1, 2}, {3, 4}, {5, 6}},
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			err := s.WithVirtualFile(ctx, data, func(vf string) error {
				assert.Equal(t, []string{vf}, s.Bindings())
				return s.CallModule(ctx, "info", vf)
			})
			require.NoError(t, err)
			assert.Equal(t, []any{[]float64{1, 3, 5}, []float64{2, 4, 6}}, got.Columns)
			assert.Empty(t, s.Bindings())
			assert.Empty(t, lib.OpenVirtualFiles())
		})
	}
}

func TestBindMatrixShape(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	_, err := s.Bind(ctx, gmt.Matrix{Rows: 2, Cols: 2, Data: []float64{1, 2, 3}})
	require.ErrorIs(t, err, gmt.ErrShapeMismatch)
	_, err = s.Bind(ctx, [][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, gmt.ErrShapeMismatch)
	_, err = s.Bind(ctx, [][]float64{})
	require.ErrorIs(t, err, gmt.ErrInvalidInput)
	assert.Empty(t, s.Bindings())
}

func TestBindVectors(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	got := captureInput(lib, "info")
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	when := []time.Time{
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 2, 6, 30, 0, 250_000_000, time.UTC),
	}
	data := gmt.Vectors{
		[]float64{1.5, 2.5},
		[]string{"a", "b"},
		[]float32{3, 4},
		[]int{5, 6},
		[]int32{7, 8},
		when,
		[]string{"x", "y z"},
	}
	err := s.WithVirtualFile(ctx, data, func(name string) error {
		return s.CallModule(ctx, "info", name)
	})
	require.NoError(t, err)

	assert.Equal(t, []any{
		[]float64{1.5, 2.5},
		[]float32{3, 4},
		[]int64{5, 6},
		[]int32{7, 8},
		[]string{"2020-01-01T00:00:00.000000", "2020-01-02T06:30:00.250000"},
	}, got.Columns)
	assert.Equal(t, []string{"a x", "b y z"}, got.Text)
	assert.Empty(t, lib.OpenVirtualFiles())
}

func TestBindTable(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	got := captureInput(lib, "info")
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	tbl, err := table.New(
		table.FloatColumn("x", []float64{0, 1}),
		table.FloatColumn("y", []float64{2, 3}),
		table.TextColumn("label", []string{"p", "q"}),
	)
	require.NoError(t, err)

	vf, err := s.Bind(ctx, tbl)
	require.NoError(t, err)
	assert.Equal(t, gmt.KindTable, vf.Kind())
	require.NoError(t, s.CallModule(ctx, "info", vf.Name()))
	require.NoError(t, vf.Release(ctx))
	require.NoError(t, vf.Release(ctx), "release is idempotent")

	assert.Equal(t, []any{[]float64{0, 1}, []float64{2, 3}}, got.Columns)
	assert.Equal(t, []string{"p", "q"}, got.Text)
}

func TestBindShapeMismatchRegistersNothing(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	_, err := s.Bind(ctx, gmt.Vectors{[]float64{1, 2, 3}, []float64{1, 2}})
	require.ErrorIs(t, err, gmt.ErrShapeMismatch)
	assert.Empty(t, s.Bindings())
	assert.Empty(t, lib.OpenVirtualFiles())
}

func TestBindFailureFreesContainer(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		fail string
		data any
	}{
		{"Put_Matrix", gmt.Matrix{Rows: 1, Cols: 2, Data: []float64{1, 2}}},
		{"Put_Vector", gmt.Vectors{[]float64{1, 2}, []float64{3, 4}}},
		{"Put_Strings", gmt.Vectors{[]float64{1, 2}, []string{"a", "b"}}},
		{"Open_VirtualFile", gmt.Vectors{[]float64{1, 2}}},
	}
	for _, tt := range cases {
		t.Run(tt.fail, func(t *testing.T) {
			lib := gmttest.NewLibrary()
			s := openSession(t, lib)
			t.Cleanup(func() { _ = s.Close(ctx) })
			lib.FailData = tt.fail

			_, err := s.Bind(ctx, tt.data)
			var se *gmt.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "GMT_"+tt.fail, se.Call)
			assert.Zero(t, lib.Containers())
			assert.Empty(t, s.Bindings())
			assert.Empty(t, lib.OpenVirtualFiles())
		})
	}
}

func TestBindRejects(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, gmttest.NewLibrary())
	t.Cleanup(func() { _ = s.Close(ctx) })

	cases := []struct {
		name string
		data any
		want error
	}{
		{"nil", nil, gmt.ErrUnrecognizedInputKind},
		{"map", map[string]float64{"x": 1}, gmt.ErrUnrecognizedInputKind},
		{"nil matrix", (*gmt.Matrix)(nil), gmt.ErrUnrecognizedInputKind},
		{"column type", gmt.Vectors{[]bool{true}}, gmt.ErrUnrecognizedInputKind},
		{"no columns", gmt.Vectors{}, gmt.ErrInvalidInput},
		{"empty columns", gmt.Vectors{[]float64{}}, gmt.ErrInvalidInput},
		{"text only", gmt.Vectors{[]string{"a"}}, gmt.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Bind(ctx, tc.data)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, s.Bindings())
		})
	}
}

func TestDataKind(t *testing.T) {
	cases := map[gmt.Kind]any{
		gmt.KindFile:    "track.xyz",
		gmt.KindMatrix:  [][]float64{{1}},
		gmt.KindVectors: gmt.Vectors{[]float64{1}},
		gmt.KindTable:   &table.Table{},
	}
	for want, data := range cases {
		got, err := gmt.DataKind(data)
		require.NoError(t, err)
		assert.Equal(t, want, got, want.String())
	}
	_, err := gmt.DataKind(42)
	require.ErrorIs(t, err, gmt.ErrUnrecognizedInputKind)
}

const gmtTable = "# Command: gmt test\n" +
	"# Tag: TEST\n" +
	"# x\ty\tname\n" +
	"> segment 1\n" +
	"1\t2\tfirst\n" +
	"3\t4\tsecond\n"

func TestOutputRoundTrip(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	lib.Module("select", func(c *gmttest.Call) int32 {
		if err := c.SetOutput(c.Fields()[0], gmtTable); err != nil {
			return gmttest.StatusError
		}
		return 0
	})
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	tbl, err := s.WithOutputTable(ctx, table.GMTOutput(), func(name string) error {
		return s.CallModule(ctx, "select", name+" -R0/5/0/5")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "name"}, tbl.Names())
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, "second", tbl.Value(1, 2))

	assert.Empty(t, s.Bindings())
	assert.Empty(t, lib.OpenVirtualFiles())
	left, err := afero.ReadDir(lib.Fs, tempDir)
	require.NoError(t, err)
	assert.Empty(t, left, "temporary files must be removed")
}

func TestReadVirtualFileErrors(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	_, err := s.ReadVirtualFile(ctx, "@GMTAPI@-999999", table.GMTOutput())
	require.ErrorIs(t, err, gmt.ErrUnknownVirtualFile)

	in, err := s.Bind(ctx, gmt.Vectors{[]float64{1}})
	require.NoError(t, err)
	_, err = s.ReadVirtualFile(ctx, in.Name(), table.GMTOutput())
	require.ErrorIs(t, err, gmt.ErrNotOutput)
	require.NoError(t, in.Release(ctx))

	out, err := s.BindOutput(ctx)
	require.NoError(t, err)
	_, err = s.ReadVirtualFile(ctx, out.Name(), table.GMTOutput())
	require.ErrorIs(t, err, gmt.ErrNative, "nothing was written")
	require.NoError(t, out.Release(ctx))
}

func TestWithVirtualFileReleasesOnPanic(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	assert.Panics(t, func() {
		_ = s.WithVirtualFile(ctx, gmt.Vectors{[]float64{1}}, func(string) error {
			panic("boom")
		})
	})
	assert.Empty(t, s.Bindings())
	assert.Empty(t, lib.OpenVirtualFiles())
}

func TestWithVirtualFilesReleasesAll(t *testing.T) {
	ctx := context.Background()
	lib := gmttest.NewLibrary()
	s := openSession(t, lib)
	t.Cleanup(func() { _ = s.Close(ctx) })

	var seen []string
	err := s.WithVirtualFiles(ctx, []any{gmt.Vectors{[]float64{1}}, "file.txt", [][]float64{{1, 2}}}, func(names []string) error {
		seen = names
		assert.Len(t, s.Bindings(), 2)
		return errors.New("module failed")
	})
	require.EqualError(t, err, "module failed")
	require.Len(t, seen, 3)
	assert.Equal(t, "file.txt", seen[1])
	assert.Empty(t, s.Bindings())

	err = s.WithVirtualFiles(ctx, []any{gmt.Vectors{[]float64{1}}, 3.14}, func([]string) error {
		t.Fatal("fn must not run when a bind fails")
		return nil
	})
	require.ErrorIs(t, err, gmt.ErrUnrecognizedInputKind)
	assert.Empty(t, s.Bindings())
	assert.Empty(t, lib.OpenVirtualFiles())
}

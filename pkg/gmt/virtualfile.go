package gmt

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// Direction says whether GMT reads from or writes to a virtual file.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Output {
		return "output"
	}
	return "input"
}

// binding is a registered virtual file. The pinner keeps Go memory handed to
// GMT in place until the file is closed.
type binding struct {
	name   string
	dir    Direction
	kind   Kind
	pinner runtime.Pinner
}

// VirtualFile is a name GMT modules accept in place of a file path. File
// kinds are the path itself and are never registered.
type VirtualFile struct {
	s        *Session
	name     string
	dir      Direction
	kind     Kind
	released bool
}

// Name returns the name to pass to a module.
func (vf *VirtualFile) Name() string { return vf.name }

// Direction reports whether the file is an input or an output.
func (vf *VirtualFile) Direction() Direction { return vf.dir }

// Kind reports what the file was bound from.
func (vf *VirtualFile) Kind() Kind { return vf.kind }

// Release closes the virtual file and unpins its data. Releasing twice is a
// no-op; releasing after the session closed panics.
func (vf *VirtualFile) Release(ctx context.Context) error {
	vf.s.mustBeOpen("Release")
	if vf.released {
		return nil
	}
	vf.released = true
	if vf.kind == KindFile {
		return nil
	}
	return vf.s.release(ctx, vf.name)
}

// Bind exposes data to GMT as an input virtual file. Data is classified by
// DataKind. Matrices and vectors are passed by reference: they must not be
// modified until the file is released. Shape errors are reported before
// anything is registered.
func (s *Session) Bind(ctx context.Context, data any) (*VirtualFile, error) {
	s.mustBeOpen("Bind")
	kind, err := DataKind(data)
	if err != nil {
		return nil, err
	}
	switch kind {
	case KindFile:
		name := data.(string)
		if name == "" {
			return nil, fmt.Errorf("%w: empty file name", ErrInvalidInput)
		}
		return &VirtualFile{s: s, name: name, dir: Input, kind: KindFile}, nil
	case KindMatrix:
		m, err := asMatrix(data)
		if err != nil {
			return nil, err
		}
		return s.bindMatrix(ctx, m)
	case KindTable:
		return s.bindVectors(ctx, KindTable, tableVectors(data.(*table.Table)))
	default:
		return s.bindVectors(ctx, KindVectors, data.(Vectors))
	}
}

func (s *Session) bindMatrix(ctx context.Context, m *Matrix) (*VirtualFile, error) {
	f := flags{s: s}
	family := f.get("GMT_IS_DATASET", "GMT_VIA_MATRIX")
	geometry := f.get("GMT_IS_POINT")
	mode := f.get("GMT_CONTAINER_ONLY")
	typ := f.get("GMT_DOUBLE")
	direction := f.get("GMT_IN", "GMT_IS_REFERENCE")
	if f.err != nil {
		return nil, f.err
	}

	obj := s.native.CreateData(s.api, family, geometry, mode, []uint64{uint64(m.Cols), uint64(m.Rows), uint64(typ), 0})
	if obj == 0 {
		return nil, fmt.Errorf("%w: GMT_Create_Data returned NULL", ErrNative)
	}
	b := &binding{dir: Input, kind: KindMatrix}
	b.pinner.Pin(&m.Data[0])
	if status := s.native.PutMatrix(s.api, obj, typ, 0, unsafe.Pointer(&m.Data[0])); status != clib.StatusOK {
		b.pinner.Unpin()
		return nil, s.discard(ctx, obj, &StatusError{Call: "GMT_Put_Matrix", Status: status})
	}
	return s.open(ctx, b, family, geometry, direction, obj)
}

func (s *Session) bindVectors(ctx context.Context, kind Kind, cols Vectors) (*VirtualFile, error) {
	rows, err := checkColumns(cols)
	if err != nil {
		return nil, err
	}
	var numeric []any
	var text [][]string
	for _, c := range cols {
		if t, ok := c.([]string); ok {
			text = append(text, t)
			continue
		}
		numeric = append(numeric, c)
	}

	f := flags{s: s}
	family := f.get("GMT_IS_DATASET", "GMT_VIA_VECTOR")
	geometry := f.get("GMT_IS_POINT")
	mode := f.get("GMT_CONTAINER_ONLY")
	dbl := f.get("GMT_DOUBLE")
	direction := f.get("GMT_IN", "GMT_IS_REFERENCE")
	stringFamily := f.get("GMT_IS_VECTOR", "GMT_IS_DUPLICATE")
	if f.err != nil {
		return nil, f.err
	}

	obj := s.native.CreateData(s.api, family, geometry, mode, []uint64{uint64(len(numeric)), uint64(rows), uint64(dbl), 0})
	if obj == 0 {
		return nil, fmt.Errorf("%w: GMT_Create_Data returned NULL", ErrNative)
	}

	b := &binding{dir: Input, kind: kind}
	fail := func(err error) (*VirtualFile, error) {
		b.pinner.Unpin()
		return nil, s.discard(ctx, obj, err)
	}
	for i, c := range numeric {
		typName, ptr := pinColumn(&b.pinner, c)
		typ, err := s.enum(typName)
		if err != nil {
			return fail(err)
		}
		if status := s.native.PutVector(s.api, obj, uint32(i), uint32(typ), ptr); status != clib.StatusOK {
			return fail(fmt.Errorf("%w (column %d)", &StatusError{Call: "GMT_Put_Vector", Status: status}, i))
		}
	}
	if len(text) > 0 {
		strs := cStrings(&b.pinner, trailingText(text, rows))
		if status := s.native.PutStrings(s.api, stringFamily, obj, strs); status != clib.StatusOK {
			return fail(&StatusError{Call: "GMT_Put_Strings", Status: status})
		}
	}
	return s.open(ctx, b, family, geometry, direction, obj)
}

// BindOutput opens an empty virtual file for a module to write a dataset
// into. Read it with ReadVirtualFile after the module returns.
func (s *Session) BindOutput(ctx context.Context) (*VirtualFile, error) {
	s.mustBeOpen("BindOutput")
	f := flags{s: s}
	family := f.get("GMT_IS_DATASET")
	geometry := f.get("GMT_IS_PLP")
	direction := f.get("GMT_OUT")
	if f.err != nil {
		return nil, f.err
	}
	return s.open(ctx, &binding{dir: Output, kind: KindTable}, family, geometry, direction, 0)
}

func (s *Session) open(ctx context.Context, b *binding, family, geometry, direction uint32, obj uintptr) (*VirtualFile, error) {
	name, status := s.native.OpenVirtualFile(s.api, family, geometry, direction, obj)
	if status != clib.StatusOK {
		b.pinner.Unpin()
		return nil, s.discard(ctx, obj, &StatusError{Call: "GMT_Open_VirtualFile", Status: status})
	}
	if _, dup := s.registry[name]; dup {
		b.pinner.Unpin()
		return nil, fmt.Errorf("%w: GMT reused open virtual file name %s", ErrNative, name)
	}
	b.name = name
	s.registry[name] = b
	s.log.Debug(ctx, "opened virtual file", "name", name, "direction", b.dir, "kind", b.kind)
	return &VirtualFile{s: s, name: name, dir: b.dir, kind: b.kind}, nil
}

// discard frees obj after a failed bind and returns err, joined with any
// failure to free.
func (s *Session) discard(ctx context.Context, obj uintptr, err error) error {
	if obj == 0 {
		return err
	}
	if status := s.native.DestroyData(s.api, obj); status != clib.StatusOK {
		s.log.Warn(ctx, "failed to free data container", "status", status)
		return errors.Join(err, &StatusError{Call: "GMT_Destroy_Data", Status: status})
	}
	return err
}

func (s *Session) release(ctx context.Context, name string) error {
	b, ok := s.registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownVirtualFile, name)
	}
	delete(s.registry, name)
	defer b.pinner.Unpin()
	if status := s.native.CloseVirtualFile(s.api, name); status != clib.StatusOK {
		return fmt.Errorf("%w: %s", &StatusError{Call: "GMT_Close_VirtualFile", Status: status}, name)
	}
	s.log.Debug(ctx, "closed virtual file", "name", name)
	return nil
}

// WithVirtualFile binds data, calls fn with the file name and releases the
// file however fn returns, panics included.
func (s *Session) WithVirtualFile(ctx context.Context, data any, fn func(name string) error) (err error) {
	vf, err := s.Bind(ctx, data)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, vf.Release(ctx)) }()
	return fn(vf.Name())
}

// WithVirtualFiles is WithVirtualFile for several inputs. If any bind fails
// the files already bound are released.
func (s *Session) WithVirtualFiles(ctx context.Context, data []any, fn func(names []string) error) (err error) {
	files := make([]*VirtualFile, 0, len(data))
	defer func() {
		for i := len(files) - 1; i >= 0; i-- {
			err = errors.Join(err, files[i].Release(ctx))
		}
	}()
	for _, d := range data {
		vf, err := s.Bind(ctx, d)
		if err != nil {
			return err
		}
		files = append(files, vf)
	}
	names := make([]string, len(files))
	for i, vf := range files {
		names[i] = vf.Name()
	}
	return fn(names)
}

// WithOutputTable binds an output virtual file, calls fn with its name and
// returns what fn made the module write, parsed with opts.
func (s *Session) WithOutputTable(ctx context.Context, opts table.ReadOptions, fn func(name string) error) (t *table.Table, err error) {
	vf, err := s.BindOutput(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { err = errors.Join(err, vf.Release(ctx)) }()
	if err := fn(vf.Name()); err != nil {
		return nil, err
	}
	return s.ReadVirtualFile(ctx, vf.Name(), opts)
}

// ReadVirtualFile parses the dataset a module wrote into the output virtual
// file name. GMT renders the dataset to a temporary text file first, so opts
// usually come from table.GMTOutput.
func (s *Session) ReadVirtualFile(ctx context.Context, name string, opts table.ReadOptions) (*table.Table, error) {
	s.mustBeOpen("ReadVirtualFile")
	b, ok := s.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVirtualFile, name)
	}
	if b.dir != Output {
		return nil, fmt.Errorf("%w: %s", ErrNotOutput, name)
	}
	obj := s.native.ReadVirtualFile(s.api, name)
	if obj == 0 {
		return nil, fmt.Errorf("%w: no data in %s", ErrNative, name)
	}

	f := flags{s: s}
	family := f.get("GMT_IS_DATASET")
	method := f.get("GMT_IS_FILE")
	geometry := f.get("GMT_IS_POINT")
	mode := f.get("GMT_WRITE_SET")
	if f.err != nil {
		return nil, f.err
	}

	tmp, err := NewTempFile(s.cfg.Fs, s.cfg.TempDir, "gmt-go-", ".txt")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tmp.Remove(); err != nil {
			s.log.Warn(ctx, "failed to remove temporary file", "path", tmp.Name(), "error", err)
		}
	}()
	if status := s.native.WriteData(s.api, family, method, geometry, mode, tmp.Name(), obj); status != clib.StatusOK {
		return nil, &StatusError{Call: "GMT_Write_Data", Status: status}
	}

	r, err := s.cfg.Fs.Open(tmp.Name())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	t, err := table.Read(r, opts)
	if err != nil {
		return nil, fmt.Errorf("gmt: read %s: %w", name, err)
	}
	return t, nil
}

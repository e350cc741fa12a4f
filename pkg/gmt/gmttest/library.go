package gmttest

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"unsafe"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
)

// ModuleFunc implements a fake GMT module. It returns the module status.
type ModuleFunc func(c *Call) int32

// CallRecord is one CallModule invocation as seen by the fake.
type CallRecord struct {
	Module string
	Args   string
	Status int32
}

// Library is an in-memory clib.Native.
type Library struct {
	// Fs is where modules and WriteData read and write files.
	Fs afero.Fs
	// FailCreateSession makes CreateSession return 0.
	FailCreateSession bool
	// DestroyStatus is returned by DestroySession for known sessions.
	DestroyStatus int32
	// FailData names a data call ("Put_Matrix", "Put_Vector",
	// "Put_Strings" or "Open_VirtualFile") that returns StatusError.
	FailData string

	mu       sync.Mutex
	next     uintptr
	vfSeq    int
	sessions map[uintptr]*session
	objects  map[uintptr]*object
	modules  map[string]ModuleFunc
	calls    []CallRecord
}

type session struct {
	vfiles map[string]*vfile
}

type vfile struct {
	output bool
	obj    uintptr
}

type column struct {
	typ uint32
	ptr unsafe.Pointer
}

type object struct {
	family  uint32
	cols    int
	rows    int
	matrix  *column
	vectors map[uint32]column
	strings unsafe.Pointer
	text    string
}

var _ clib.Native = (*Library)(nil)

// NewLibrary returns a fake library backed by an in-memory filesystem.
func NewLibrary() *Library {
	return &Library{
		Fs:       afero.NewMemMapFs(),
		next:     0x1000,
		sessions: make(map[uintptr]*session),
		objects:  make(map[uintptr]*object),
		modules:  make(map[string]ModuleFunc),
	}
}

// Module registers fn under name, replacing any previous registration.
func (l *Library) Module(name string, fn ModuleFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.modules[name] = fn
}

// Calls returns every CallModule invocation so far.
func (l *Library) Calls() []CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// OpenSessions returns the number of sessions created and not destroyed.
func (l *Library) OpenSessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sessions)
}

// OpenVirtualFiles returns the names of open virtual files across sessions.
func (l *Library) OpenVirtualFiles() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for _, s := range l.sessions {
		names = append(names, slices.Collect(maps.Keys(s.vfiles))...)
	}
	slices.Sort(names)
	return names
}

// Containers returns the number of data containers created and not
// destroyed.
func (l *Library) Containers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.objects)
}

func (l *Library) ptr() uintptr {
	l.next += 0x10
	return l.next
}

func (l *Library) CreateSession(tag string, pad, mode uint32) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.FailCreateSession || tag == "" {
		return 0
	}
	p := l.ptr()
	l.sessions[p] = &session{vfiles: make(map[string]*vfile)}
	return p
}

func (l *Library) DestroySession(api uintptr) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sessions[api]; !ok {
		return StatusError
	}
	delete(l.sessions, api)
	return l.DestroyStatus
}

func (l *Library) GetEnum(api uintptr, name string) int32 {
	if v, ok := Enums[name]; ok {
		return v
	}
	return clib.EnumNotSet
}

func (l *Library) GetDefault(api uintptr, keyword string) (string, int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sessions[api]; !ok {
		return "", StatusError
	}
	v, ok := Defaults[keyword]
	if !ok {
		return "", StatusError
	}
	return v, clib.StatusOK
}

func (l *Library) CallModule(api uintptr, module string, mode int32, args string) int32 {
	l.mu.Lock()
	_, known := l.sessions[api]
	fn, ok := l.modules[module]
	l.mu.Unlock()

	status := StatusUnknownModule
	switch {
	case !known || mode != Enums["GMT_MODULE_CMD"]:
		status = StatusError
	case ok:
		status = fn(&Call{Module: module, Args: args, lib: l, api: api})
	}

	l.mu.Lock()
	l.calls = append(l.calls, CallRecord{Module: module, Args: args, Status: status})
	l.mu.Unlock()
	return status
}

func (l *Library) CreateData(api uintptr, family, geometry, mode uint32, dim []uint64) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sessions[api]; !ok || len(dim) < 2 {
		return 0
	}
	p := l.ptr()
	l.objects[p] = &object{
		family:  family,
		cols:    int(dim[0]),
		rows:    int(dim[1]),
		vectors: make(map[uint32]column),
	}
	return p
}

func (l *Library) DestroyData(api, data uintptr) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.objects[data]; !ok {
		return StatusError
	}
	delete(l.objects, data)
	return clib.StatusOK
}

func (l *Library) PutMatrix(api, data uintptr, typ uint32, pad int32, matrix unsafe.Pointer) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj, ok := l.objects[data]
	if !ok || matrix == nil || l.FailData == "Put_Matrix" {
		return StatusError
	}
	obj.matrix = &column{typ: typ, ptr: matrix}
	return clib.StatusOK
}

func (l *Library) PutVector(api, data uintptr, col, typ uint32, vector unsafe.Pointer) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj, ok := l.objects[data]
	if !ok || vector == nil || int(col) >= obj.cols || l.FailData == "Put_Vector" {
		return StatusError
	}
	obj.vectors[col] = column{typ: typ, ptr: vector}
	return clib.StatusOK
}

func (l *Library) PutStrings(api uintptr, family uint32, data uintptr, strs unsafe.Pointer) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj, ok := l.objects[data]
	if !ok || strs == nil || l.FailData == "Put_Strings" {
		return StatusError
	}
	obj.strings = strs
	return clib.StatusOK
}

func (l *Library) OpenVirtualFile(api uintptr, family, geometry, direction uint32, data uintptr) (string, int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[api]
	if !ok || l.FailData == "Open_VirtualFile" {
		return "", StatusError
	}
	output := direction&enum("GMT_OUT") != 0
	if !output {
		if _, ok := l.objects[data]; !ok {
			return "", StatusError
		}
	}
	l.vfSeq++
	name := fmt.Sprintf("@GMTAPI@-%06d", l.vfSeq)
	s.vfiles[name] = &vfile{output: output, obj: data}
	return name, clib.StatusOK
}

func (l *Library) CloseVirtualFile(api uintptr, name string) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[api]
	if !ok {
		return StatusError
	}
	if _, ok := s.vfiles[name]; !ok {
		return StatusError
	}
	delete(s.vfiles, name)
	return clib.StatusOK
}

func (l *Library) ReadVirtualFile(api uintptr, name string) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.sessions[api]
	if !ok {
		return 0
	}
	vf, ok := s.vfiles[name]
	if !ok || !vf.output {
		return 0
	}
	return vf.obj
}

func (l *Library) WriteData(api uintptr, family, method, geometry, mode uint32, output string, data uintptr) int32 {
	l.mu.Lock()
	obj, ok := l.objects[data]
	l.mu.Unlock()
	if !ok {
		return StatusError
	}
	if err := afero.WriteFile(l.Fs, output, []byte(obj.text), 0o644); err != nil {
		return StatusError
	}
	return clib.StatusOK
}

// Call is the view a ModuleFunc gets of one module invocation.
type Call struct {
	Module string
	Args   string

	lib *Library
	api uintptr
}

// Fields splits the argument string on white space.
func (c *Call) Fields() []string { return strings.Fields(c.Args) }

// Redirect returns the target of a "->file" argument, if present.
func (c *Call) Redirect() (string, bool) {
	for _, f := range c.Fields() {
		if target, ok := strings.CutPrefix(f, "->"); ok {
			return target, true
		}
	}
	return "", false
}

// Dataset is an input virtual file decoded back into Go values. Numeric
// columns are []float64, []float32, []int64 or []int32; datetime columns are
// []string.
type Dataset struct {
	Columns []any
	Text    []string
}

var errNotVirtual = errors.New("gmttest: not an open input virtual file")

// Input decodes the input virtual file called name.
func (c *Call) Input(name string) (*Dataset, error) {
	l := c.lib
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.sessions[c.api]
	vf, ok := s.vfiles[name]
	if !ok || vf.output {
		return nil, fmt.Errorf("%w: %s", errNotVirtual, name)
	}
	obj := l.objects[vf.obj]
	ds := &Dataset{}
	if obj.matrix != nil {
		if obj.matrix.typ != enum("GMT_DOUBLE") {
			return nil, fmt.Errorf("gmttest: unsupported matrix type %d", obj.matrix.typ)
		}
		flat := unsafe.Slice((*float64)(obj.matrix.ptr), obj.rows*obj.cols)
		for col := 0; col < obj.cols; col++ {
			vals := make([]float64, obj.rows)
			for row := range vals {
				vals[row] = flat[row*obj.cols+col]
			}
			ds.Columns = append(ds.Columns, vals)
		}
		return ds, nil
	}
	for col := uint32(0); int(col) < obj.cols; col++ {
		v, ok := obj.vectors[col]
		if !ok {
			return nil, fmt.Errorf("gmttest: column %d was never put", col)
		}
		decoded, err := decodeVector(v, obj.rows)
		if err != nil {
			return nil, err
		}
		ds.Columns = append(ds.Columns, decoded)
	}
	if obj.strings != nil {
		ds.Text = goStrings(obj.strings, obj.rows)
	}
	return ds, nil
}

func decodeVector(v column, n int) (any, error) {
	switch v.typ {
	case enum("GMT_DOUBLE"):
		return slices.Clone(unsafe.Slice((*float64)(v.ptr), n)), nil
	case enum("GMT_FLOAT"):
		return slices.Clone(unsafe.Slice((*float32)(v.ptr), n)), nil
	case enum("GMT_LONG"):
		return slices.Clone(unsafe.Slice((*int64)(v.ptr), n)), nil
	case enum("GMT_INT"):
		return slices.Clone(unsafe.Slice((*int32)(v.ptr), n)), nil
	case enum("GMT_DATETIME"), enum("GMT_TEXT"):
		return goStrings(v.ptr, n), nil
	}
	return nil, fmt.Errorf("gmttest: unsupported vector type %d", v.typ)
}

func goStrings(p unsafe.Pointer, n int) []string {
	ptrs := unsafe.Slice((**byte)(p), n)
	out := make([]string, n)
	for i, s := range ptrs {
		out[i] = goString(s)
	}
	return out
}

func goString(p *byte) string {
	if p == nil {
		return ""
	}
	var b []byte
	for q := p; *q != 0; q = (*byte)(unsafe.Add(unsafe.Pointer(q), 1)) {
		b = append(b, *q)
	}
	return string(b)
}

// SetOutput stores text as the content of the output virtual file name.
func (c *Call) SetOutput(name, text string) error {
	l := c.lib
	l.mu.Lock()
	defer l.mu.Unlock()
	vf, ok := l.sessions[c.api].vfiles[name]
	if !ok || !vf.output {
		return fmt.Errorf("gmttest: %s is not an open output virtual file", name)
	}
	p := l.ptr()
	l.objects[p] = &object{text: text}
	vf.obj = p
	return nil
}

// ReadFile reads path from the library filesystem.
func (c *Call) ReadFile(path string) (string, error) {
	b, err := afero.ReadFile(c.lib.Fs, path)
	return string(b), err
}

// WriteFile writes text to path on the library filesystem.
func (c *Call) WriteFile(path, text string) error {
	return afero.WriteFile(c.lib.Fs, path, []byte(text), 0o644)
}

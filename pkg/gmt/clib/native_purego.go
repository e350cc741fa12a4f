//go:build darwin || freebsd || linux || windows

package clib

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/geobind/gmt-go/internal/dl"
)

const (
	virtualFileNameLen = 32 // GMT_VF_LEN is 16; leave room for future releases
	defaultValueLen    = 256
)

type funcs struct {
	createSession    func(tag string, pad, mode uint32, printFunc uintptr) uintptr
	destroySession   func(api uintptr) int32
	getEnum          func(api uintptr, key string) int32
	getDefault       func(api uintptr, keyword string, value *byte) int32
	callModule       func(api uintptr, module string, mode int32, args string) int32
	createData       func(api uintptr, family, geometry, mode uint32, dim *uint64, rng, inc *float64, registration uint32, pad int32, data uintptr) uintptr
	destroyData      func(api uintptr, object *uintptr) int32
	putMatrix        func(api, m uintptr, typ uint32, pad int32, matrix unsafe.Pointer) int32
	putVector        func(api, v uintptr, col, typ uint32, vector unsafe.Pointer) int32
	putStrings       func(api uintptr, family uint32, object uintptr, array unsafe.Pointer) int32
	openVirtualFile  func(api uintptr, family, geometry, direction uint32, data uintptr, name *byte) int32
	closeVirtualFile func(api uintptr, name string) int32
	readVirtualFile  func(api uintptr, name string) uintptr
	writeData        func(api uintptr, family, method, geometry, mode uint32, wesn *float64, output string, data uintptr) int32
}

// Bind resolves every GMT function the binding uses and returns them as a
// Native table.
func Bind(lib dl.Library) (Native, error) {
	f := &funcs{}
	table := []struct {
		name string
		fptr any
	}{
		{"Create_Session", &f.createSession},
		{"Destroy_Session", &f.destroySession},
		{"Get_Enum", &f.getEnum},
		{"Get_Default", &f.getDefault},
		{"Call_Module", &f.callModule},
		{"Create_Data", &f.createData},
		{"Destroy_Data", &f.destroyData},
		{"Put_Matrix", &f.putMatrix},
		{"Put_Vector", &f.putVector},
		{"Put_Strings", &f.putStrings},
		{"Open_VirtualFile", &f.openVirtualFile},
		{"Close_VirtualFile", &f.closeVirtualFile},
		{"Read_VirtualFile", &f.readVirtualFile},
		{"Write_Data", &f.writeData},
	}
	for _, fn := range table {
		addr, err := lib.Lookup(Prefix + fn.name)
		if err != nil {
			return nil, &SymbolMissingError{Path: lib.Path(), Symbol: Prefix + fn.name, Err: err}
		}
		purego.RegisterFunc(fn.fptr, addr)
	}
	return f, nil
}

func (f *funcs) CreateSession(tag string, pad, mode uint32) uintptr {
	return f.createSession(tag, pad, mode, 0)
}

func (f *funcs) DestroySession(api uintptr) int32 { return f.destroySession(api) }

func (f *funcs) GetEnum(api uintptr, name string) int32 { return f.getEnum(api, name) }

func (f *funcs) GetDefault(api uintptr, keyword string) (string, int32) {
	var buf [defaultValueLen]byte
	status := f.getDefault(api, keyword, &buf[0])
	return cString(buf[:]), status
}

func (f *funcs) CallModule(api uintptr, module string, mode int32, args string) int32 {
	return f.callModule(api, module, mode, args)
}

func (f *funcs) CreateData(api uintptr, family, geometry, mode uint32, dim []uint64) uintptr {
	var d [4]uint64
	if len(dim) > len(d) {
		panic(fmt.Sprintf("clib: CreateData takes at most %d dimensions, got %d", len(d), len(dim)))
	}
	copy(d[:], dim)
	return f.createData(api, family, geometry, mode, &d[0], nil, nil, 0, 0, 0)
}

func (f *funcs) DestroyData(api, data uintptr) int32 {
	return f.destroyData(api, &data)
}

func (f *funcs) PutMatrix(api, data uintptr, typ uint32, pad int32, matrix unsafe.Pointer) int32 {
	return f.putMatrix(api, data, typ, pad, matrix)
}

func (f *funcs) PutVector(api, data uintptr, col, typ uint32, vector unsafe.Pointer) int32 {
	return f.putVector(api, data, col, typ, vector)
}

func (f *funcs) PutStrings(api uintptr, family uint32, data uintptr, strs unsafe.Pointer) int32 {
	return f.putStrings(api, family, data, strs)
}

func (f *funcs) OpenVirtualFile(api uintptr, family, geometry, direction uint32, data uintptr) (string, int32) {
	var buf [virtualFileNameLen]byte
	status := f.openVirtualFile(api, family, geometry, direction, data, &buf[0])
	return cString(buf[:]), status
}

func (f *funcs) CloseVirtualFile(api uintptr, name string) int32 {
	return f.closeVirtualFile(api, name)
}

func (f *funcs) ReadVirtualFile(api uintptr, name string) uintptr {
	return f.readVirtualFile(api, name)
}

func (f *funcs) WriteData(api uintptr, family, method, geometry, mode uint32, output string, data uintptr) int32 {
	return f.writeData(api, family, method, geometry, mode, nil, output, data)
}

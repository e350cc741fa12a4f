package clib

import "unsafe"

// Prefix namespaces every GMT C API entry point.
const Prefix = "GMT_"

// RequiredFunctions must all resolve for a library to be accepted.
var RequiredFunctions = []string{"Create_Session", "Get_Enum", "Call_Module", "Destroy_Session"}

// StatusOK is GMT_NOERROR.
const StatusOK int32 = 0

// EnumNotSet is GMT_NOTSET, returned by GMT_Get_Enum for unknown names.
const EnumNotSet int32 = -99999

// Native mirrors the GMT C API functions used by the binding. Pointers to
// native objects travel as uintptr and are never dereferenced on the Go side.
// Memory passed through unsafe.Pointer must stay pinned for as long as GMT
// may read it.
type Native interface {
	// CreateSession returns a GMTAPI_CTRL pointer, or 0 on failure.
	CreateSession(tag string, pad, mode uint32) uintptr
	DestroySession(api uintptr) int32
	GetEnum(api uintptr, name string) int32
	GetDefault(api uintptr, keyword string) (string, int32)
	CallModule(api uintptr, module string, mode int32, args string) int32

	// CreateData returns a container, or 0 on failure. dim holds at most
	// four values: columns, rows, data type and an unused slot.
	CreateData(api uintptr, family, geometry, mode uint32, dim []uint64) uintptr
	// DestroyData frees a container that was never handed to a virtual
	// file. Containers attached to virtual files are freed with the session.
	DestroyData(api, data uintptr) int32
	PutMatrix(api, data uintptr, typ uint32, pad int32, matrix unsafe.Pointer) int32
	PutVector(api, data uintptr, col, typ uint32, vector unsafe.Pointer) int32
	PutStrings(api uintptr, family uint32, data uintptr, strs unsafe.Pointer) int32

	OpenVirtualFile(api uintptr, family, geometry, direction uint32, data uintptr) (string, int32)
	CloseVirtualFile(api uintptr, name string) int32
	// ReadVirtualFile returns the object written into an output virtual
	// file, or 0 if there is none.
	ReadVirtualFile(api uintptr, name string) uintptr
	WriteData(api uintptr, family, method, geometry, mode uint32, output string, data uintptr) int32
}

// cString returns the bytes of buf up to the first NUL.
func cString(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

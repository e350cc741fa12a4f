// Package gmttest provides in-memory stand-ins for the GMT shared library and
// the dynamic loader so sessions, virtual files and module wrappers can be
// tested without libgmt installed.
//
// Library implements clib.Native. Modules are Go functions registered by
// name; they can decode input virtual files, fill output virtual files and
// read or write files on the Library's afero filesystem:
//
//	lib := gmttest.NewLibrary()
//	lib.Module("info", func(c *gmttest.Call) int32 {
//	    in, err := c.Input(c.Fields()[0])
//	    ...
//	    return 0
//	})
//	handle := gmttest.Handle(t, lib)
//	s, err := gmt.Open(ctx, gmt.WithLibrary(handle), gmt.WithFs(lib.Fs))
//
// Loader is a fake dl.Loader whose libraries export a configurable symbol set.
package gmttest

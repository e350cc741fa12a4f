// Package gmt drives the GMT (Generic Mapping Tools) C library from Go.
//
// A Session wraps one GMT API session. Open it, run modules with CallModule
// and close it when done:
//
//	s, err := gmt.Open(ctx)
//	if err != nil {
//		return err
//	}
//	defer s.Close(ctx)
//
//	err = s.WithVirtualFile(ctx, gmt.Vectors{x, y, z}, func(name string) error {
//		return s.CallModule(ctx, "contour", name+" -R0/10/0/10 -JX10c -C1")
//	})
//
// In-memory data reaches modules through virtual files: Bind hands GMT a
// name that reads straight from Go memory, and BindOutput with
// ReadVirtualFile brings a module's tabular output back as a *table.Table.
//
// The shared library is located once per process by package clib; see
// clib.LibraryPathEnv to point it at a specific installation.
package gmt

// Package internalcheck holds static policy tests over the library packages.
//
// It has no exported API. The tests load the packages with go/packages and
// reject calls that bypass the logging facade or the afero filesystem.
package internalcheck

// Package table holds the tabular data exchanged with GMT modules: named,
// typed columns of equal length, read from and written to delimited text.
//
// The reader understands the layout GMT uses when a module writes a table
// to a file: metadata rows, a commented header row whose first column name
// carries a "# " prefix, segment separators starting with ">", and ISO 8601
// timestamps.
package table

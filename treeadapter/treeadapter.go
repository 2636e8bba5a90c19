// Package treeadapter defines the TreeAdapter external interface (§6): the
// only mandatory contract between the evaluation core and a concrete
// hierarchical container (filesystem, ZIP archive, HDF5 file, ...). The
// Evaluator and Driver are generic over this interface and never inspect
// concrete adapter kinds (§9 "Adapter polymorphism").
package treeadapter

// Adapter enumerates normalized paths and answers structural/content
// queries about them. All Path arguments and return values are in the
// normalized form produced by pathnorm.Normalize.
type Adapter interface {
	// Enumerate returns every path in the tree, in adapter-defined (but
	// stable, for a given underlying tree) order, including the empty
	// (root) path.
	Enumerate() ([]string, error)

	// Exists reports whether path denotes any node in the tree.
	Exists(path string) bool

	// IsFile reports whether path denotes a regular file.
	IsFile(path string) bool

	// IsDir reports whether path denotes a directory.
	IsDir(path string) bool

	// LoadJSON loads and parses path's content as JSON. It fails if path
	// does not exist, cannot be read, or does not parse as JSON -- YAML is
	// not accepted here (§6).
	LoadJSON(path string) (any, error)
}

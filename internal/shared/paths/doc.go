// Package paths resolves where the catalog daemon keeps its files.
//
// # Directory Structure
//
//	$XDG_DATA_HOME/catalogd/     (or ~/.local/share/catalogd)
//	  ├── badger/                (badger backend)
//	  └── catalog.db             (sqlite backend)
//
// # Usage
//
//	dir, err := paths.EnsureDir(paths.DataDir())
package paths

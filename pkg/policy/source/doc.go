// Package source loads policy configurations from YAML seed files and
// feeds them into the version store. On startup an empty store is seeded
// with the file's configuration as the first active version; afterwards a
// file watcher turns every edit into a new draft awaiting explicit
// activation.
package source

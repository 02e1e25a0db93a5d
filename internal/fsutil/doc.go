// Package fsutil relocates generated directory trees: Merge flattens one
// directory level into its destination and Move relocates a whole
// directory. Both prefer an atomic rename and fall back to copy-then-delete
// across filesystems.
package fsutil

// Package dirsize computes the size and file count of a directory and of each
// of its immediate subdirectories.
//
// The root's own files are measured first, then every top-level subdirectory is
// measured recursively on a bounded pool of workers. Results are merged into a
// single collector, and directories that cannot be read are recorded in an
// ErrorLog instead of aborting the run.
package dirsize

// Package fs provides filesystem abstractions for testability and fault injection.
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Production code should use fs.Default (which is [LocalFS]):
//
//	file, err := fs.Default.OpenFile(path, os.O_RDONLY, 0)
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".rec", fs.Fault{FailOnRename: true})
//	// inject ffs into component under test
//
// This package does NOT take context.Context parameters. Local filesystem
// calls are not interruptible at the syscall level; callers check their
// context between calls.
package fs

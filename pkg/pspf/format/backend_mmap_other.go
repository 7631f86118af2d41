//go:build !unix

package format

// OpenMmapBackend is not available on this platform; plain file I/O is used
// instead.
func OpenMmapBackend(path string) (Backend, error) {
	return OpenFileBackend(path)
}

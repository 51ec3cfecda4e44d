package testsupport

import "os"

// LoadFixture reads a test fixture from disk.
func LoadFixture(path string) ([]byte, error) {
	return os.ReadFile(path)
}

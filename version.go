package kreuzberg

import "fmt"

// Library version, mirrored by the C ABI constants.
const (
	VersionMajor = 4
	VersionMinor = 0
	VersionPatch = 0
)

// Version returns the library version as "major.minor.patch".
func Version() string {
	return fmt.Sprintf("%d.%d.%d", VersionMajor, VersionMinor, VersionPatch)
}

//go:build windows

package runtime

// SetupSessionPersistence is a no-op on Windows, which has no SIGHUP.
func SetupSessionPersistence() {}

//go:build !unix

package mem

// LockPages is a no-op on platforms without mlock support.
func LockPages(b []byte) error { return nil }

// UnlockPages is a no-op on platforms without mlock support.
func UnlockPages(b []byte) error { return nil }

//go:build unix

package mem

import "golang.org/x/sys/unix"

// LockPages pins the pages backing b so wiped secrets cannot be swapped out.
// Failures (e.g. RLIMIT_MEMLOCK) are reported but callers treat locking as
// best effort.
func LockPages(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// UnlockPages releases pages pinned by LockPages.
func UnlockPages(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}

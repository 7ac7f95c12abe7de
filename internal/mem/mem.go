// Package mem provides element buffer helpers for the vector storage engine:
// cloning, deterministic wiping and best-effort page locking for buffers that
// hold sensitive data.
package mem

// WipeFunc overwrites a buffer in place. Implementations must not retain buf.
type WipeFunc func(buf []byte)

// Wipe overwrites buf. With a nil hook it zero-fills; otherwise the hook
// performs the overwrite (e.g. a pattern pass for special structures).
func Wipe(buf []byte, hook WipeFunc) {
	if len(buf) == 0 {
		return
	}
	if hook != nil {
		hook(buf)
		return
	}
	for i := range buf {
		buf[i] = 0
	}
}

// Clone returns an independent copy of b. A nil input yields nil.
func Clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

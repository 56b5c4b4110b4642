package crypto

// Wipe overwrites buf with zero bytes. Session teardown uses it to clear
// every buffer that held key material or Diffie-Hellman outputs before the
// memory is released.
func Wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

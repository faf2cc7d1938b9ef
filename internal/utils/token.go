package utils // package utils provides helper functions for token generation and hashing

import (
    "crypto/rand" // secure random number generation
    "encoding/hex" // hex encoding of random bytes
)

// sessionIDBytes is the entropy of a session identifier.  48 random bytes
// give 384 bits, well past the 128-bit floor required for unguessable ids,
// and hex-encode to a 96-character string.
const sessionIDBytes = 48

// NewSessionID returns a cryptographically random opaque session id.  The
// id carries no information about the user or the creation time; the user
// association is stored server-side only.
func NewSessionID() (string, error) {
    return RandomHex(sessionIDBytes)
}

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func RandomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

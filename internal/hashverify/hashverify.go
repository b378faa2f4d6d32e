// Package hashverify streams a file's SHA-1 and/or SHA-256 digest and
// compares it against an upstream-declared hex value.
package hashverify

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Declared holds the optional upstream-declared digests for a download.
// Either or both may be present; both absent is accepted (the caller decides
// whether that's a policy violation).
type Declared struct {
	SHA1   string
	SHA256 string
}

// MismatchError reports a single algorithm's digest disagreement.
type MismatchError struct {
	Algorithm string
	Want       string
	Got        string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s mismatch: want %s, got %s", e.Algorithm, e.Want, e.Got)
}

// Verify streams path once per present digest in d and compares each to the
// declared lowercase-hex value. Returns the first mismatch encountered
// (sha1 checked before sha256). A Declared with both fields empty succeeds
// trivially.
func Verify(path string, d Declared) error {
	if d.SHA1 != "" {
		if err := verifyOne(path, sha1.New(), "sha1", d.SHA1); err != nil {
			return err
		}
	}
	if d.SHA256 != "" {
		if err := verifyOne(path, sha256.New(), "sha256", d.SHA256); err != nil {
			return err
		}
	}
	return nil
}

func verifyOne(path string, h hash.Hash, algorithm, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("hashverify: opening %s for %s: %w", path, algorithm, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashverify: reading %s for %s: %w", path, algorithm, err)
	}

	got := hex.EncodeToString(h.Sum(nil))
	want = strings.ToLower(want)
	if got != want {
		return &MismatchError{Algorithm: algorithm, Want: want, Got: got}
	}
	return nil
}

package hashverify

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, content []byte) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "archive.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestVerifySucceedsOnMatchingDigests(t *testing.T) {
	content := []byte("hello avm")
	path := writeFixture(t, content)

	sha1Sum := sha1.Sum(content)
	sha256Sum := sha256.Sum256(content)

	err := Verify(path, Declared{
		SHA1:   hex.EncodeToString(sha1Sum[:]),
		SHA256: hex.EncodeToString(sha256Sum[:]),
	})
	assert.NoError(t, err)
}

func TestVerifyFailsOnSHA256Mismatch(t *testing.T) {
	path := writeFixture(t, []byte("hello avm"))

	err := Verify(path, Declared{SHA256: strings.Repeat("0", 64)})
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "sha256", mismatch.Algorithm)
}

func TestVerifyFailsOnSHA1Mismatch(t *testing.T) {
	path := writeFixture(t, []byte("hello avm"))

	err := Verify(path, Declared{SHA1: strings.Repeat("0", 40)})
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "sha1", mismatch.Algorithm)
}

func TestVerifyTrivialWhenNoDigestsDeclared(t *testing.T) {
	path := writeFixture(t, []byte("hello avm"))
	assert.NoError(t, Verify(path, Declared{}))
}

func TestVerifyIsCaseInsensitiveOnDeclaredHex(t *testing.T) {
	content := []byte("hello avm")
	path := writeFixture(t, content)
	sum := sha256.Sum256(content)
	upper := strings.ToUpper(hex.EncodeToString(sum[:]))
	assert.NoError(t, Verify(path, Declared{SHA256: upper}))
}

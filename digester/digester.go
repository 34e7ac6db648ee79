package digester

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
)

// CalculateDigest computes the SHA256 hex digest of the file at
// path. Returns empty string with no error if the file does not
// exist.
func CalculateDigest(path string) (result string, retErr error) {
	const errCtx = "calculating digest"

	fi, err := os.Open(path) //nolint:gosec // path is caller-provided by design
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	defer func() {
		if closeErr := fi.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("%s: %w", errCtx, closeErr)
		}
	}()

	ha := sha256.New()

	if _, err := io.Copy(ha, fi); err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return hex.EncodeToString(ha.Sum(nil)), nil
}

// Digest computes the SHA256 hex digest of data.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:])
}

// Same reports whether the files at a and b exist and have the
// same content.
func Same(a, b string) (bool, error) {
	const errCtx = "comparing digests"

	da, err := CalculateDigest(a)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	db, err := CalculateDigest(b)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return da != "" && da == db, nil
}

// Matches reports whether the file at path exists and holds
// exactly data.
func Matches(path string, data []byte) (bool, error) {
	const errCtx = "matching digest"

	got, err := CalculateDigest(path)
	if err != nil {
		return false, fmt.Errorf("%s: %w", errCtx, err)
	}

	return got != "" && got == Digest(data), nil
}

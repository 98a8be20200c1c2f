package artifact

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"
)

// Domain prefixes for content-addressed fingerprints.
// Version suffix enables future algorithm migration.
const (
	DomainInputs = "enrolscan/inputs/v1"
	DomainModel  = "enrolscan/model/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes a domain-separated fingerprint over the canonical
// encoding of v. Returns error if v cannot be canonically marshaled.
func Fingerprint(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// FileDigest identifies one input file by path, size, and content hash.
type FileDigest struct {
	Path   string
	Size   int64
	SHA256 string
}

// DigestFile streams a file through SHA-256.
func DigestFile(path string) (FileDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileDigest{}, fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return FileDigest{}, fmt.Errorf("digest %s: %w", path, err)
	}

	return FileDigest{
		Path:   path,
		Size:   n,
		SHA256: hex.EncodeToString(h.Sum(nil)),
	}, nil
}

// InputsFingerprint computes a single fingerprint over every input file.
// Digests are sorted by path first so discovery order cannot leak into the
// fingerprint. The result is stamped into every artifact a run produces.
func InputsFingerprint(digests []FileDigest) (string, error) {
	sorted := slices.Clone(digests)
	slices.SortFunc(sorted, func(a, b FileDigest) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})

	files := make(Array, 0, len(sorted))
	for _, d := range sorted {
		files = append(files, Object{
			"path":   String(d.Path),
			"size":   Int(d.Size),
			"sha256": String(d.SHA256),
		})
	}

	return Fingerprint(DomainInputs, Object{"files": files})
}

package runstate

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"time"
)

// checksumChunkSize is the read buffer size for streaming file hashing.
const checksumChunkSize = 4096

// Compute returns the hex SHA-256 digest of a file, streaming it in
// fixed-size chunks so arbitrarily large artifacts never load into
// memory at once. An unreadable file yields "" with a logged warning:
// checksums are diagnostic, not load-bearing.
func (s *Store) Compute(path string) string {
	f, err := os.Open(path)
	if err != nil {
		s.logger.Warn("could not compute checksum", "path", path, "error", err)
		return ""
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.logger.Warn("could not compute checksum", "path", path, "error", err)
			return ""
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Record computes the checksum of a checkpoint artifact and stores it
// under label, persisting state. Re-recording a label overwrites the
// prior entry (last write wins). A failed computation records nothing.
func (s *Store) Record(path, label string) error {
	checksum := s.Compute(path)
	if checksum == "" {
		return nil
	}
	s.state.Checksums[label] = ChecksumRecord{
		Path:       path,
		Checksum:   checksum,
		RecordedAt: time.Now(),
	}
	return s.Save()
}

// Verification compares a stored checksum against a fresh computation.
type Verification struct {
	Label    string
	Path     string
	Stored   string
	Current  string
	Match    bool
	Recorded time.Time
}

// Verify recomputes the digest for a recorded label and reports whether
// the artifact still matches. Drift is advisory only: the pipeline never
// refuses to proceed on mismatch, it just surfaces both digests.
// Returns false if the label was never recorded.
func (s *Store) Verify(label string) (Verification, bool) {
	rec, ok := s.state.Checksums[label]
	if !ok {
		return Verification{}, false
	}
	current := s.Compute(rec.Path)
	return Verification{
		Label:    label,
		Path:     rec.Path,
		Stored:   rec.Checksum,
		Current:  current,
		Match:    current != "" && current == rec.Checksum,
		Recorded: rec.RecordedAt,
	}, true
}

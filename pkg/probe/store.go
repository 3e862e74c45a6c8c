package probe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/aunovis/secure-sum/pkg/errors"
	"github.com/aunovis/secure-sum/pkg/target"
)

// Store persists one probe record per target in a directory.
//
// Every target owns a distinct file, so concurrent saves for different
// targets need no locking.
type Store struct {
	dir string
}

// NewStore opens the store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "create probe directory %s", dir)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory holding the records.
func (s *Store) Dir() string { return s.dir }

// Path returns the record file of t.
func (s *Store) Path(t target.SingleTarget) string {
	return filepath.Join(s.dir, Filename(t))
}

// Filename derives the record file name from the target identity. Every
// character outside [A-Za-z0-9._-] is replaced by an underscore.
func Filename(t target.SingleTarget) string {
	return sanitize(t.Identity()) + ".json"
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, s)
}

// Load returns the stored record of t, or nil if there is none. A record
// that cannot be decoded is logged and reported as absent.
func (s *Store) Load(t target.SingleTarget) (*Result, error) {
	path := s.Path(t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read probe record %s", path)
	}

	r, err := Decode(data)
	if err != nil {
		log.Warn("Ignoring unreadable probe record", "target", t, "path", path, "err", err)
		return nil, nil
	}
	return r, nil
}

// Save stores raw runner output for t verbatim.
func (s *Store) Save(t target.SingleTarget, raw []byte) error {
	path := s.Path(t)
	tmp, err := os.CreateTemp(s.dir, ".probe-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write probe record %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeIO, err, "write probe record %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write probe record %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write probe record %s", path)
	}
	log.Debug("Stored probe record", "target", t, "path", path)
	return nil
}

// SaveResult encodes r and stores it for t.
func (s *Store) SaveResult(t target.SingleTarget, r *Result) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode probe record")
	}
	return s.Save(t, data)
}

// Clear removes every stored record and returns how many were removed.
func (s *Store) Clear() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeIO, err, "list probe records")
	}
	for _, m := range matches {
		if err := os.Remove(m); err != nil {
			return 0, errors.Wrap(errors.ErrCodeIO, err, "remove %s", m)
		}
	}
	return len(matches), nil
}

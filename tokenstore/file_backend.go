package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

var _ Backend = (*FileBackend)(nil)

// FileBackend persists slots as a single JSON object on disk so a session survives
// process restarts. Writes go to a temp file that is renamed over the original.
type FileBackend struct {
	path string
	lock sync.Mutex
}

func NewFileBackend(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("[NewFileBackend] path is required")
	}
	return &FileBackend{path: path}, nil
}

func (fb *FileBackend) Path() string {
	return fb.path
}

func (fb *FileBackend) Get(key string) (string, bool, error) {
	fb.lock.Lock()
	defer fb.lock.Unlock()

	slots, err := fb.load()
	if err != nil {
		return "", false, err
	}
	value, ok := slots[key]
	return value, ok, nil
}

func (fb *FileBackend) Set(key, value string) error {
	fb.lock.Lock()
	defer fb.lock.Unlock()

	slots, err := fb.load()
	if err != nil {
		// An unreadable file is replaced rather than blocking a fresh login.
		slots = map[string]string{}
	}
	slots[key] = value
	return fb.save(slots)
}

func (fb *FileBackend) Delete(key string) error {
	fb.lock.Lock()
	defer fb.lock.Unlock()

	slots, err := fb.load()
	if err != nil {
		slots = map[string]string{}
	}
	if _, ok := slots[key]; !ok && err == nil {
		return nil
	}
	delete(slots, key)
	if len(slots) == 0 {
		if err := os.Remove(fb.path); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "[FileBackend.Delete] remove")
		}
		return nil
	}
	return fb.save(slots)
}

func (fb *FileBackend) load() (map[string]string, error) {
	raw, err := os.ReadFile(fb.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileBackend.load] read")
	}
	slots := map[string]string{}
	if len(raw) == 0 {
		return slots, nil
	}
	if err := json.Unmarshal(raw, &slots); err != nil {
		return nil, errors.Wrap(err, "[FileBackend.load] decode")
	}
	return slots, nil
}

func (fb *FileBackend) save(slots map[string]string) error {
	raw, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[FileBackend.save] encode")
	}
	dir := filepath.Dir(fb.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[FileBackend.save] mkdir")
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return errors.Wrap(err, "[FileBackend.save] create temp")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "[FileBackend.save] chmod")
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "[FileBackend.save] write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[FileBackend.save] close")
	}
	if err := os.Rename(tmpName, fb.path); err != nil {
		return errors.Wrap(err, "[FileBackend.save] rename")
	}
	return nil
}

package backendfake

import (
	"sync"

	"github.com/jrsteele09/venta-admin/tokenstore"
)

var _ tokenstore.Backend = (*FakeBackend)(nil)

type FakeBackend struct {
	slots map[string]string
	lock  sync.RWMutex

	// Fail, when set, is returned from every operation
	Fail error

	// SetFailures makes Set fail for the listed keys only
	SetFailures map[string]error
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		slots: make(map[string]string),
	}
}

func (fb *FakeBackend) Get(key string) (string, bool, error) {
	fb.lock.RLock()
	defer fb.lock.RUnlock()

	if fb.Fail != nil {
		return "", false, fb.Fail
	}
	value, ok := fb.slots[key]
	return value, ok, nil
}

func (fb *FakeBackend) Set(key, value string) error {
	fb.lock.Lock()
	defer fb.lock.Unlock()

	if fb.Fail != nil {
		return fb.Fail
	}
	if err := fb.SetFailures[key]; err != nil {
		return err
	}
	fb.slots[key] = value
	return nil
}

func (fb *FakeBackend) Delete(key string) error {
	fb.lock.Lock()
	defer fb.lock.Unlock()

	if fb.Fail != nil {
		return fb.Fail
	}
	delete(fb.slots, key)
	return nil
}

// Len is the number of populated slots.
func (fb *FakeBackend) Len() int {
	fb.lock.RLock()
	defer fb.lock.RUnlock()
	return len(fb.slots)
}

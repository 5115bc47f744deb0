package mocks

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
)

var ErrUnknownHandle = errors.New("unknown media handle")

// MediaStoreMock is an in-memory reference counted store. Func fields
// override the default behaviour of a call.
type MediaStoreMock struct {
	PutFunc   func(data []byte, mimeType string) (string, error)
	AdoptFunc func(handle string) error

	mu       sync.Mutex
	seq      int
	refs     map[string]int
	blobs    map[string][]byte
	releases map[string]int
	sweeps   int
}

func (m *MediaStoreMock) init() {
	if m.refs == nil {
		m.refs = make(map[string]int)
		m.blobs = make(map[string][]byte)
		m.releases = make(map[string]int)
	}
}

func (m *MediaStoreMock) Put(data []byte, mimeType string) (string, error) {
	if m.PutFunc != nil {
		return m.PutFunc(data, mimeType)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.seq++
	handle := fmt.Sprintf("blob-%d.mp4", m.seq)
	m.refs[handle] = 1
	m.blobs[handle] = append([]byte(nil), data...)
	return handle, nil
}

// Seed places a blob with no references, as a previous run would leave it.
func (m *MediaStoreMock) Seed(handle string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.blobs[handle] = data
}

func (m *MediaStoreMock) Adopt(handle string) error {
	if m.AdoptFunc != nil {
		return m.AdoptFunc(handle)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if _, ok := m.blobs[handle]; !ok {
		return ErrUnknownHandle
	}
	m.refs[handle]++
	return nil
}

func (m *MediaStoreMock) Retain(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if m.refs[handle] == 0 {
		return ErrUnknownHandle
	}
	m.refs[handle]++
	return nil
}

func (m *MediaStoreMock) Release(handle string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if m.refs[handle] == 0 {
		return ErrUnknownHandle
	}
	m.releases[handle]++
	m.refs[handle]--
	if m.refs[handle] == 0 {
		delete(m.refs, handle)
		delete(m.blobs, handle)
	}
	return nil
}

func (m *MediaStoreMock) Path(handle string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	if m.refs[handle] == 0 {
		return "", ErrUnknownHandle
	}
	return "/media/" + handle, nil
}

func (m *MediaStoreMock) Open(handle string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	data, ok := m.blobs[handle]
	if !ok || m.refs[handle] == 0 {
		return nil, ErrUnknownHandle
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MediaStoreMock) Sweep() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.sweeps++
	removed := 0
	for h := range m.blobs {
		if m.refs[h] == 0 {
			delete(m.blobs, h)
			removed++
		}
	}
	return removed, nil
}

func (m *MediaStoreMock) RefCount(handle string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refs[handle]
}

func (m *MediaStoreMock) Releases(handle string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.releases[handle]
}

func (m *MediaStoreMock) TotalReleases() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.releases {
		n += c
	}
	return n
}

func (m *MediaStoreMock) Exists(handle string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[handle]
	return ok
}

func (m *MediaStoreMock) Sweeps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweeps
}

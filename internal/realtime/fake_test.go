package realtime

import (
	"encoding/json"
	"sync"
)

type fakeConn struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakeConn) Deliver(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeConn) messages() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]any, 0, len(f.payloads))
	for _, p := range f.payloads {
		var m map[string]any
		_ = json.Unmarshal(p, &m)
		out = append(out, m)
	}
	return out
}

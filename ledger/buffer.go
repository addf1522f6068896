package ledger

// reader is the committed state a bufferedTx reads through to.
type reader interface {
	has(k []byte) (bool, error)
	get(k []byte) ([]byte, bool, error)
}

// bufferedTx overlays pending writes on top of committed state.
// Backends without native transactions commit the overlay on success
// and drop it on failure.
type bufferedTx struct {
	base     reader
	readOnly bool
	writes   map[string][]byte
	order    []string
}

func newBufferedTx(base reader, readOnly bool) *bufferedTx {
	return &bufferedTx{base: base, readOnly: readOnly, writes: make(map[string][]byte)}
}

func (t *bufferedTx) Has(key Key) (bool, error) {
	k := key.Bytes()
	if _, ok := t.writes[string(k)]; ok {
		return true, nil
	}
	return t.base.has(k)
}

func (t *bufferedTx) Get(key Key) ([]byte, bool, error) {
	k := key.Bytes()
	if v, ok := t.writes[string(k)]; ok {
		return cloneBytes(v), true, nil
	}
	return t.base.get(k)
}

func (t *bufferedTx) Set(key Key, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if value == nil {
		return ErrNilParam
	}
	k := string(key.Bytes())
	if _, seen := t.writes[k]; !seen {
		t.order = append(t.order, k)
	}
	t.writes[k] = cloneBytes(value)
	return nil
}

// pending returns the buffered writes in first-write order.
func (t *bufferedTx) pending() []kv {
	out := make([]kv, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, kv{key: []byte(k), value: t.writes[k]})
	}
	return out
}

type kv struct {
	key   []byte
	value []byte
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package memory

// table keeps rows of one entity type in insertion order.
type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) has(id string) bool {
	_, ok := t.rows[id]
	return ok
}

// filter returns copies of the rows matching keep, in insertion order. A nil
// keep matches everything.
func (t *table[T]) filter(keep func(*T) bool) []T {
	out := make([]T, 0)
	for _, id := range t.order {
		v := t.rows[id]
		if keep == nil || keep(&v) {
			out = append(out, v)
		}
	}
	return out
}

func (t *table[T]) insert(id string, v T) {
	if _, exists := t.rows[id]; !exists {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) set(id string, v T) {
	t.rows[id] = v
}

func (t *table[T]) remove(id string) {
	if _, ok := t.rows[id]; !ok {
		return
	}
	delete(t.rows, id)
	for i, o := range t.order {
		if o == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// removeWhere deletes every row matching drop and returns their ids.
func (t *table[T]) removeWhere(drop func(*T) bool) []string {
	var removed []string
	kept := t.order[:0]
	for _, id := range t.order {
		v := t.rows[id]
		if drop(&v) {
			delete(t.rows, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}

package scheduler

// Rotation picks entity indexes for consecutive working days.
// It never repeats the previous index when another exists, and every index is
// used once per cycle before any index is reused.
type Rotation struct {
	picker Picker
	total  int
	prev   int
	used   map[int]struct{}
	forced bool
}

// NewRotation creates a rotation over total entities
func NewRotation(total int, p Picker) *Rotation {
	return &Rotation{
		picker: p,
		total:  total,
		prev:   -1,
		used:   make(map[int]struct{}, total),
	}
}

// Next selects the index for the next working day and records it in the
// current cycle. The cycle restarts once every index has been used.
func (r *Rotation) Next() int {
	idx := r.pick()
	r.prev = idx
	r.used[idx] = struct{}{}
	if len(r.used) >= r.total {
		clear(r.used)
	}
	return idx
}

// Forced reports whether the last pick had to fall back to a reused index
func (r *Rotation) Forced() bool {
	return r.forced
}

func (r *Rotation) pick() int {
	r.forced = false
	if r.prev < 0 {
		return r.picker.Intn(r.total)
	}

	candidates := make([]int, 0, r.total)
	for i := 0; i < r.total; i++ {
		if i == r.prev {
			continue
		}
		if _, ok := r.used[i]; ok {
			continue
		}
		candidates = append(candidates, i)
	}
	if len(candidates) > 0 {
		return candidates[r.picker.Intn(len(candidates))]
	}

	// Every other index is used this cycle: anything but yesterday's.
	r.forced = true
	if r.total == 1 {
		return 0
	}
	for i := 0; i < r.total; i++ {
		if i != r.prev {
			candidates = append(candidates, i)
		}
	}
	return candidates[r.picker.Intn(len(candidates))]
}

package value

// Visitor is handed to a Marker during a collection pass. It must be called
// once for every value the marker holds.
type Visitor func(v Value)

// Marker is implemented by containers that root values, e.g. arrays
type Marker interface {
	Mark(visit Visitor)
}

// Heap is a minimal mark-and-sweep collector owning every Object it allocates.
// Containers never own the objects they reference; they only report them
// through Mark so the heap can decide liveness.
//
// Thread-safety: Heap is not safe for concurrent use
type Heap struct {
	objects   []*Object
	extraCost int
	collected int
}

func NewHeap() *Heap {
	return &Heap{}
}

// NewObject allocates an object of the given class on the heap
func (h *Heap) NewObject(class string) *Object {
	o := &Object{Class: class, heap: h}
	h.objects = append(h.objects, o)
	return o
}

// ReportExtraMemoryCost records memory held outside the heap on behalf of its
// objects, such as the backing storage of an array.
func (h *Heap) ReportExtraMemoryCost(bytes int) {
	h.extraCost += bytes
}

// ExtraMemoryCost returns the total reported since the last collection
func (h *Heap) ExtraMemoryCost() int {
	return h.extraCost
}

// Live returns the number of allocated objects
func (h *Heap) Live() int {
	return len(h.objects)
}

// Visit marks v if it is an unmarked object of this heap and traces its
// inner marker. Primitive values are ignored.
func (h *Heap) Visit(v Value) {
	o := v.obj
	if v.kind != KindObject || o == nil || o.marked || o.heap != h {
		return
	}
	o.marked = true
	if o.Inner != nil {
		o.Inner.Mark(h.Visit)
	}
}

// Collect runs one full collection. Every root is marked, then unmarked
// objects are released. Returns the number of objects freed.
func (h *Heap) Collect(roots ...Marker) int {
	for _, o := range h.objects {
		o.marked = false
	}
	for _, r := range roots {
		r.Mark(h.Visit)
	}

	live := h.objects[:0]
	freed := 0
	for _, o := range h.objects {
		if o.marked {
			live = append(live, o)
			continue
		}
		o.heap = nil
		freed++
	}
	// drop references held by the tail of the reused slice
	for i := len(live); i < len(h.objects); i++ {
		h.objects[i] = nil
	}
	h.objects = live
	h.extraCost = 0
	h.collected += freed
	return freed
}

// Collected returns the total number of objects freed by all passes
func (h *Heap) Collected() int {
	return h.collected
}

package doc

import "sort"

// Origin identifies where chunks came from, usually a file path.
type Origin string

func (o Origin) String() string { return string(o) }

// Documentation maps each origin to its chunks in extraction order.
type Documentation struct {
	entries map[Origin][]*Chunk
}

// NewDocumentation returns an empty Documentation.
func NewDocumentation() *Documentation {
	return &Documentation{entries: make(map[Origin][]*Chunk)}
}

// Add appends chunks for origin. Adding no chunks still registers the
// origin.
func (d *Documentation) Add(origin Origin, chunks ...*Chunk) {
	d.entries[origin] = append(d.entries[origin], chunks...)
}

// Get returns the chunks of origin.
func (d *Documentation) Get(origin Origin) []*Chunk {
	return d.entries[origin]
}

// Origins returns all origins in sorted order.
func (d *Documentation) Origins() []Origin {
	origins := make([]Origin, 0, len(d.entries))
	for o := range d.entries {
		origins = append(origins, o)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i] < origins[j] })
	return origins
}

// Len returns the number of origins.
func (d *Documentation) Len() int { return len(d.entries) }

// ChunkCount returns the number of chunks over all origins.
func (d *Documentation) ChunkCount() int {
	n := 0
	for _, chunks := range d.entries {
		n += len(chunks)
	}
	return n
}

// Join moves all entries of other into d.
func (d *Documentation) Join(other *Documentation) {
	for o, chunks := range other.entries {
		d.Add(o, chunks...)
	}
}

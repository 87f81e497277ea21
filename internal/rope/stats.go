package rope

// Stats describes the shape and storage of a rope.
type Stats struct {
	// Len is the number of bytes in the rope.
	Len int

	// Depth is the number of nodes on the longest root-to-leaf path. A
	// single leaf has depth 1.
	Depth int

	// Leaves and Internal count distinct nodes of each variant.
	Leaves   int
	Internal int

	// Chunks is the number of distinct chunks referenced by leaves.
	Chunks int

	// OwnedBytes and BorrowedBytes sum the sizes of the distinct chunks by
	// storage kind. These can exceed Len when leaves reference windows.
	OwnedBytes    int
	BorrowedBytes int

	// Shared counts distinct nodes with more than one owner.
	Shared int
}

// Stats walks the tree and returns its statistics. Nodes reachable along
// several paths are counted once.
func (r *Rope) Stats() Stats {
	s := Stats{Len: r.length}
	w := statsWalker{
		stats:  &s,
		depths: make(map[*Rope]int),
		chunks: make(map[*Chunk]struct{}),
	}
	s.Depth = w.walk(r)
	s.Chunks = len(w.chunks)
	return s
}

type statsWalker struct {
	stats  *Stats
	depths map[*Rope]int
	chunks map[*Chunk]struct{}
}

func (w *statsWalker) walk(n *Rope) int {
	if d, ok := w.depths[n]; ok {
		return d
	}
	if n.refs.refs() > 1 {
		w.stats.Shared++
	}

	d := 1
	if n.IsLeaf() {
		w.stats.Leaves++
		if _, ok := w.chunks[n.chunk]; !ok {
			w.chunks[n.chunk] = struct{}{}
			if n.chunk.Owned() {
				w.stats.OwnedBytes += n.chunk.Len()
			} else {
				w.stats.BorrowedBytes += n.chunk.Len()
			}
		}
	} else {
		w.stats.Internal++
		d += max(w.walk(n.left), w.walk(n.right))
	}
	w.depths[n] = d
	return d
}

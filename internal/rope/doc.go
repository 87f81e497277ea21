// Package rope provides a reference-counted rope for building large byte
// sequences out of smaller fragments without copying them.
//
// A rope is a binary tree. Leaf nodes hold a window into a Chunk, a fixed
// byte buffer that is either borrowed from the caller or owned by the rope.
// Internal nodes hold two children and cache the total length of their
// subtree, so indexing descends by comparing against the left length.
//
// Key properties:
//   - Concat is O(1) and never touches bytes
//   - Sub shares every leaf and subtree the cut does not split
//   - Flatten copies the content into one Chunk once and rewrites the
//     visited nodes to point at it, so later reads are cheap
//   - Nothing is rebalanced automatically; Rebalance is an explicit step
//
// Every *Rope and *Chunk returned to a caller carries one reference that the
// caller owns and must drop with Release. Operations never consume their
// operands:
//
//	text := []byte("hello world")
//	a, _ := rope.NewWindow(text, 0, 6)
//	b, _ := rope.NewWindow(text, 6, 5)
//	r := rope.Concat(a, b)
//	a.Release()
//	b.Release()
//
//	s, _ := r.Sub(3, 8) // "lo wo", shares both leaves' chunks
//	c := s.Flatten()
//	fmt.Println(c.String())
//	c.Release()
//	s.Release()
//	r.Release()
//
// Ropes are not safe for concurrent use. Reference counts are plain
// integers and Flatten mutates nodes that other ropes may share.
//
// Building with the "invariants" tag validates the tree after every
// operation that creates or rewrites nodes. Building with the "tracing" tag
// records a stack trace on every reference count change and prints them
// when a count goes negative.
package rope

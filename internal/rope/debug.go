package rope

import (
	"fmt"
	"strings"
)

// maxDebugLeafText bounds the leaf content quoted by DebugString.
const maxDebugLeafText = 32

// DebugString renders the tree one node per line, children indented under
// their parent, left before right. A node shared along several paths is
// printed at each.
//
//	node len=9 refs=1
//	  leaf len=6 refs=2 [0,6) string/23 "Hello "
//	  leaf len=3 refs=2 [6,9) string/23 "my "
func (r *Rope) DebugString() string {
	var sb strings.Builder
	type frame struct {
		n     *Rope
		depth int
	}
	stack := []frame{{r, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		sb.WriteString(strings.Repeat("  ", f.depth))
		n := f.n
		if !n.IsLeaf() {
			fmt.Fprintf(&sb, "node len=%d refs=%d\n", n.length, n.refs.refs())
			stack = append(stack, frame{n.right, f.depth + 1}, frame{n.left, f.depth + 1})
			continue
		}

		text := n.chunk.Bytes()[n.offset : n.offset+n.length]
		suffix := ""
		if len(text) > maxDebugLeafText {
			text, suffix = text[:maxDebugLeafText], "..."
		}
		fmt.Fprintf(&sb, "leaf len=%d refs=%d [%d,%d) %s/%d %q%s\n",
			n.length, n.refs.refs(), n.offset, n.offset+n.length,
			n.chunk.Kind(), n.chunk.Len(), text, suffix)
	}
	return sb.String()
}

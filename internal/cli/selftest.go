package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/xrope/internal/rope"
)

// ErrSelfTestFailed is returned by the selftest command when any check
// fails. The failures have already been printed.
var ErrSelfTestFailed = errors.New("self-test failed")

func newSelfTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in rope scenario",
		Long: `Build "Hello my name is Yuichi" from six windows of one buffer, joined
in a three-level tree, and check its length and indexed bytes. Then flatten
it, which collapses the tree into one owned leaf, and check the content and
a suffix cut from that leaf.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSelfTest(cmd.OutOrStdout())
		},
	}
}

// checker prints one line per check and remembers whether any failed.
type checker struct {
	w      io.Writer
	failed bool
}

func (c *checker) check(expr string, ok bool) {
	if ok {
		fmt.Fprintf(c.w, "test success: %s\n", expr)
		return
	}
	fmt.Fprintf(c.w, "test fail: %s\n", expr)
	c.failed = true
}

func runSelfTest(w io.Writer) error {
	fmt.Fprintln(w, "----test started...----")

	c := &checker{w: w}
	if err := selfTest(c); err != nil {
		return err
	}

	if c.failed {
		fmt.Fprintln(w, "----test failed---")
		return ErrSelfTestFailed
	}
	fmt.Fprintln(w, "----test successfully finished----")
	return nil
}

func selfTest(c *checker) error {
	text := []byte("Hello my name is Yuichi")

	window := func(off, n int) *rope.Rope {
		r, err := rope.NewWindow(text, off, n)
		if err != nil {
			// The windows below are constant and in range.
			panic(err)
		}
		return r
	}
	pair := func(a, b *rope.Rope) *rope.Rope {
		r := rope.Concat(a, b)
		a.Release()
		b.Release()
		return r
	}

	z := pair(window(15, 1), window(16, 7))
	w := pair(window(9, 2), window(11, 4))
	v := pair(window(0, 6), window(6, 3))
	y := rope.Concat(w, z)
	x := rope.Concat(v, y)
	y.Release()
	z.Release()
	w.Release()
	v.Release()
	defer x.Release()

	c.check("x.Len() == len(text)", x.Len() == len(text))

	for _, i := range []int{3, 10, 15} {
		b, err := x.At(i)
		c.check(fmt.Sprintf("x.At(%d) == text[%d]", i, i), err == nil && b == text[i])
	}

	flat := x.Flatten()
	c.check("string(x.Flatten().Bytes()) == string(text)", string(flat.Bytes()) == string(text))
	flat.Release()

	s, err := x.Sub(13, x.Len())
	if err != nil {
		return errors.Wrap(err, "extracting suffix")
	}
	flat = s.Flatten()
	c.check("string(x.Sub(13, x.Len()).Flatten().Bytes()) == string(text[13:])",
		string(flat.Bytes()) == string(text[13:]))
	flat.Release()
	s.Release()

	return nil
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dshills/xrope/internal/logging"
	"github.com/dshills/xrope/internal/rope"
)

// loadFile reads path into a balanced rope of owned leaves.
func loadFile(ctx context.Context, opts *rootOptions, path string) (*rope.Rope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening input")
	}
	defer f.Close()

	r, err := rope.FromReader(f, opts.cfg.Load.BlockSize)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	if logger := logging.FromContext(ctx); logger.GetLevel() <= log.DebugLevel {
		s := r.Stats()
		logger.Debug("loaded file",
			logging.FieldPath, path,
			logging.FieldLen, s.Len,
			logging.FieldBlock, opts.cfg.Load.BlockSize,
			logging.FieldDepth, s.Depth,
			logging.FieldLeaves, s.Leaves,
			logging.FieldChunks, s.Chunks,
		)
	}
	return r, nil
}

func parseOffset(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s %q", name, s)
	}
	return n, nil
}

func newStatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <file>",
		Short: "Print the size and shape of a file loaded as a rope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer r.Release()

			s := r.Stats()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-9s %s\n", "path", args[0])
			fmt.Fprintf(w, "%-9s %s (%s bytes)\n", "size", humanize.IBytes(uint64(s.Len)), humanize.Comma(int64(s.Len)))
			fmt.Fprintf(w, "%-9s %s\n", "block", humanize.IBytes(uint64(opts.cfg.Load.BlockSize)))
			fmt.Fprintf(w, "%-9s %d\n", "depth", s.Depth)
			fmt.Fprintf(w, "%-9s %s\n", "leaves", humanize.Comma(int64(s.Leaves)))
			fmt.Fprintf(w, "%-9s %s\n", "internal", humanize.Comma(int64(s.Internal)))
			fmt.Fprintf(w, "%-9s %s\n", "chunks", humanize.Comma(int64(s.Chunks)))
			fmt.Fprintf(w, "%-9s %s\n", "owned", humanize.IBytes(uint64(s.OwnedBytes)))
			fmt.Fprintf(w, "%-9s %s\n", "borrowed", humanize.IBytes(uint64(s.BorrowedBytes)))
			return nil
		},
	}
}

func newAtCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "at <file> <index>",
		Short: "Print the byte at a zero-based offset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, err := parseOffset("index", args[1])
			if err != nil {
				return err
			}
			r, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer r.Release()

			b, err := r.At(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%q\n", b)
			return nil
		},
	}
}

func newSliceCommand(opts *rootOptions) *cobra.Command {
	var flatten bool

	cmd := &cobra.Command{
		Use:   "slice <file> <start> <end>",
		Short: "Print the bytes in [start, end)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseOffset("start", args[1])
			if err != nil {
				return err
			}
			end, err := parseOffset("end", args[2])
			if err != nil {
				return err
			}
			r, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer r.Release()

			s, err := r.Sub(start, end)
			if err != nil {
				return err
			}
			defer s.Release()

			if flatten {
				c := s.Flatten()
				defer c.Release()
				_, err = cmd.OutOrStdout().Write(c.Bytes())
			} else {
				_, err = s.WriteTo(cmd.OutOrStdout())
			}
			return errors.Wrap(err, "writing output")
		},
	}
	cmd.Flags().BoolVar(&flatten, "flatten", false, "flatten the slice into one buffer before writing")
	return cmd
}

func newTreeCommand(opts *rootOptions) *cobra.Command {
	var rebalance bool

	cmd := &cobra.Command{
		Use:   "tree <file> [<start> <end>]",
		Short: "Render the node structure of a file or a slice of it",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				return errors.New("tree takes a file, or a file with both start and end")
			}
			r, err := loadFile(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer r.Release()

			if len(args) == 3 {
				start, err := parseOffset("start", args[1])
				if err != nil {
					return err
				}
				end, err := parseOffset("end", args[2])
				if err != nil {
					return err
				}
				s, err := r.Sub(start, end)
				if err != nil {
					return err
				}
				defer s.Release()
				r = s
			}
			if rebalance {
				b := r.Rebalance()
				defer b.Release()
				r = b
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), r.DebugString())
			return err
		},
	}
	cmd.Flags().BoolVar(&rebalance, "rebalance", false, "rebalance before rendering")
	return cmd
}

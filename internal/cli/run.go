package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/dshills/xrope/internal/logging"
	"github.com/dshills/xrope/internal/script"
	"github.com/dshills/xrope/internal/watch"
)

func newRunCommand(opts *rootOptions) *cobra.Command {
	var (
		eval       string
		watchFiles bool
		also       []string
	)

	cmd := &cobra.Command{
		Use:   "run [script.lua]",
		Short: "Run a Lua script with the rope module loaded",
		Long: `Run a Lua script, or inline code given with --eval, in a sandboxed
interpreter. The global rope module creates ropes:

  local x = rope.new("Hello my name is Yuichi")
  print(x:sub(13, #x):flatten())

Each run is bounded by the configured script timeout. With --watch the
script is run again whenever it, or a file named by --also, changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (eval == "") == (len(args) == 0) {
				return errors.New("run takes a script path or --eval, but not both")
			}
			if watchFiles && eval != "" {
				return errors.New("--watch needs a script path")
			}

			logger := logging.FromContext(cmd.Context())
			r := &scriptRunner{opts: opts, out: cmd.OutOrStdout(), logger: logger}
			if eval != "" {
				return r.run(cmd.Context(), func(ctx context.Context, s *script.State) error {
					return s.DoString(ctx, eval)
				})
			}

			path := args[0]
			doFile := func(ctx context.Context, s *script.State) error {
				logger.Debug("running script", logging.FieldScript, path)
				return s.DoFile(ctx, path)
			}
			if !watchFiles {
				return r.run(cmd.Context(), doFile)
			}
			return r.watch(cmd.Context(), append([]string{path}, also...), doFile)
		},
	}
	cmd.Flags().StringVarP(&eval, "eval", "e", "", "Lua code to run")
	cmd.Flags().BoolVarP(&watchFiles, "watch", "w", false, "run again when the script changes")
	cmd.Flags().StringSliceVar(&also, "also", nil, "additional files that trigger a run with --watch")
	return cmd
}

// scriptRunner runs code in a fresh script state each time, so handles
// leaked by one run never carry into the next.
type scriptRunner struct {
	opts   *rootOptions
	out    io.Writer
	logger *log.Logger
}

func (r *scriptRunner) run(ctx context.Context, fn func(context.Context, *script.State) error) error {
	s, err := script.New(
		script.WithOutput(r.out),
		script.WithLogger(r.logger),
		script.WithTimeout(r.opts.cfg.Script.Timeout),
		script.WithBlockSize(r.opts.cfg.Load.BlockSize),
	)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

// watch runs fn once and again after every change to files, until ctx is
// cancelled. Script errors are logged rather than ending the watch.
func (r *scriptRunner) watch(ctx context.Context, files []string, fn func(context.Context, *script.State) error) error {
	w := watch.New()
	for _, f := range files {
		if err := w.Add(f); err != nil {
			return err
		}
	}

	runOnce := func() {
		if err := r.run(ctx, fn); err != nil {
			r.logger.Error("script failed", logging.FieldError, err)
		}
	}

	runOnce()
	return w.Run(ctx, func(ev watch.Event) {
		r.logger.Info("file changed", logging.FieldPath, ev.Path, logging.FieldOp, ev.Op)
		if ev.Op != watch.OpRemove {
			runOnce()
		}
	})
}

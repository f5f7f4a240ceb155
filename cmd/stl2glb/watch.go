package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/philipparndt/stl2glb/pkg/openscad"
	"github.com/philipparndt/stl2glb/pkg/watcher"
)

var (
	watchOutput   string
	watchPreview  bool
	watchSimplify float64
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-convert a file to GLB whenever it or its dependencies change",
	Long: `Convert the file once, then keep watching it. For OpenSCAD sources every
file pulled in through include or use statements is watched as well, and
the dependency list is refreshed after each render.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Output file (default: input with .glb extension)")
	watchCmd.Flags().BoolVar(&watchPreview, "preview", false, "Render OpenSCAD sources in preview mode")
	watchCmd.Flags().Float64Var(&watchSimplify, "simplify", 0, "Decimate to this fraction of the triangles, e.g. 0.5")
}

// sourceWatcher re-converts one source file on change
type sourceWatcher struct {
	ctx    context.Context
	source string
	output string
	opts   convertOptions
	fw     *watcher.FileWatcher
	mu     sync.Mutex
	closed bool
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce)
	if err != nil {
		return err
	}
	fw.OnError(func(err error) {
		log.Warn("watcher error", zap.Error(err))
	})

	sw := &sourceWatcher{
		ctx:    ctx,
		source: args[0],
		output: outputPath(args[0], watchOutput, ".glb"),
		opts:   convertOptions{Preview: watchPreview, Simplify: watchSimplify},
		fw:     fw,
	}

	sw.rebuild()
	if err := sw.watchFiles(); err != nil {
		fw.Close()
		return err
	}
	fw.Start()

	log.Info("watching for changes", zap.String("file", sw.source), zap.String("output", sw.output))
	<-ctx.Done()

	err = fw.Close()
	sw.mu.Lock()
	sw.closed = true
	sw.mu.Unlock()
	return err
}

// watchFiles replaces the watched set with the source and its dependencies
func (sw *sourceWatcher) watchFiles() error {
	files := []string{sw.source}
	if isOpenSCAD(sw.source) {
		deps, err := newRenderer(".").ResolveDependencies(sw.source)
		if err != nil {
			log.Warn("could not resolve dependencies", zap.Error(err))
		} else {
			files = deps
		}
	}

	if err := sw.fw.RemoveAll(); err != nil {
		return err
	}
	log.Debug("watching files", zap.Strings("files", files))
	return sw.fw.Watch(files, sw.onChange)
}

func (sw *sourceWatcher) onChange(path string) {
	log.Info("file changed", zap.String("file", path))

	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.closed {
		return
	}

	sw.rebuild()
	if err := sw.watchFiles(); err != nil {
		log.Error("failed to update watched files", zap.Error(err))
	}
}

// rebuild converts the source; failures are logged and the watch goes on
func (sw *sourceWatcher) rebuild() {
	if err := convertFile(sw.ctx, sw.source, sw.output, sw.opts); err != nil {
		var renderErr *openscad.RenderError
		if errors.As(err, &renderErr) {
			log.Error("render failed", zap.Int("code", renderErr.Code), zap.String("output", renderErr.Output))
			return
		}
		log.Error("conversion failed", zap.Error(err))
	}
}

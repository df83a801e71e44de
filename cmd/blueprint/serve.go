package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/blueprint/pkg/config"
	"github.com/ritzau/blueprint/pkg/diagram"
	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/metrics"
	"github.com/ritzau/blueprint/pkg/model"
	"github.com/ritzau/blueprint/pkg/pipeline"
	"github.com/ritzau/blueprint/pkg/pubsub"
	"github.com/ritzau/blueprint/pkg/store"
	"github.com/ritzau/blueprint/pkg/watcher"
	"github.com/ritzau/blueprint/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve exposes the diagram over an HTTP API for the editor. Every change is
published to SSE subscribers and triggers regeneration of the documents in the
output directory.

With --db the diagram is kept in a SQLite database; otherwise it lives in
memory, seeded from the diagram file. With --watch edits to the diagram file
are loaded into the running server.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	f := serveCmd.Flags()
	f.IntP("port", "p", 8080, "Port to listen on")
	f.Bool("watch", false, "Reload the diagram file when it changes")
	f.String("db", "", "SQLite database for the diagram (empty keeps it in memory)")
	addAIFlags(serveCmd)
}

// openStore restores the diagram from the database, or seeds it from the
// diagram file when nothing is stored yet.
func openStore(ctx context.Context, c *config.Config) (*store.Store, func(), error) {
	closeFn := func() {}
	var st *store.Store

	if c.DB != "" {
		p, err := store.OpenSQLite(c.DB)
		if err != nil {
			return nil, nil, err
		}
		closeFn = func() {
			if err := p.Close(); err != nil {
				logging.Warn("closing database", "error", err)
			}
		}
		st, err = store.Open(ctx, p)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
	} else {
		st = store.New(nil)
	}

	if len(st.Snapshot().Nodes) > 0 {
		return st, closeFn, nil
	}
	g, _, err := diagram.ImportFile(c.Diagram)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("starting with an empty diagram", "file", c.Diagram)
	case err != nil:
		closeFn()
		return nil, nil, err
	default:
		if err := st.Replace(ctx, *g); err != nil {
			closeFn()
			return nil, nil, err
		}
		logging.Info("loaded diagram", "file", c.Diagram, "nodes", len(g.Nodes))
	}
	return st, closeFn, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	opts, err := cfg.GenerateOptions()
	if err != nil {
		return err
	}
	recorder := metrics.NewPrometheusRecorder()
	generator := pipeline.Generator{Options: opts, Recorder: recorder}
	publisher := pubsub.NewSSEPublisher()
	source := pipeline.SourceFunc(func(context.Context) (model.Graph, error) {
		return st.Snapshot(), nil
	})
	runner := pipeline.NewRunner(source, generator, cfg.Out, publisher)

	exp, err := newExpander(cfg, recorder)
	if errors.Is(err, expander.ErrNoAPIKey) {
		logging.Info("mind-map expansion disabled: no API key configured")
		exp = nil
	} else if err != nil {
		return err
	}

	server := web.NewServer(web.Config{
		Store:     st,
		Generator: generator,
		Runner:    runner,
		Expander:  exp,
		Publisher: publisher,
		Metrics:   recorder.Handler(),
	})

	regenerateOnChange(ctx, st, runner)
	if cfg.Watch {
		if err := reloadOnFileChange(ctx, st, cfg.Diagram); err != nil {
			return err
		}
	}

	if _, err := runner.Run(ctx, "startup"); err != nil {
		logging.Warn("initial generation failed", "error", err)
	}

	fmt.Printf("Blueprint API listening on http://localhost:%d\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")
	return server.Start(ctx, cfg.Port)
}

// regenerateOnChange runs the pipeline after bursts of store mutations.
func regenerateOnChange(ctx context.Context, st *store.Store, runner *pipeline.Runner) {
	changes := make(chan watcher.ChangeEvent, 64)
	st.OnChange(func(c store.Change) {
		select {
		case changes <- watcher.ChangeEvent{Type: watcher.ChangeTypeDiagram, Paths: []string{string(c.Kind)}, Timestamp: time.Now()}:
		default:
			// A regeneration is already pending.
		}
	})

	debouncer := watcher.NewDebouncer(changes, 250*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)
	go func() {
		for range debouncer.Output() {
			if _, err := runner.Run(ctx, "diagram changed"); err != nil && ctx.Err() == nil {
				logging.Warn("regeneration failed", "error", err)
			}
		}
	}()
}

// reloadOnFileChange replaces the store contents whenever the diagram file is
// rewritten on disk.
func reloadOnFileChange(ctx context.Context, st *store.Store, path string) error {
	fw, err := watcher.NewFileWatcher(path, "")
	if err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}
	fw.Start(ctx)
	debouncer := watcher.NewDebouncer(fw.Events(), 300*time.Millisecond, 2*time.Second)
	debouncer.Start(ctx)

	go func() {
		for event := range debouncer.Output() {
			if !watcher.AnalyzeChanges(event).NeedDiagramReload {
				continue
			}
			g, report, err := diagram.ImportFile(path)
			if err != nil {
				logging.Error("reloading diagram failed", "file", path, "error", err)
				continue
			}
			diff := diagram.Diff(st.Snapshot(), *g)
			if diff.Empty() {
				logging.Debug("diagram file unchanged", "file", path)
				continue
			}
			if err := st.Replace(ctx, *g); err != nil {
				logging.Error("replacing diagram failed", "error", err)
				continue
			}
			logging.Info("reloaded diagram", "file", path,
				"added", len(diff.AddedNodes), "removed", len(diff.RemovedNodes),
				"modified", len(diff.ModifiedNodes), "dropped_edges", len(report.DroppedEdges))
		}
	}()
	return nil
}

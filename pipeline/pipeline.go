// Package pipeline wires the container reader, DBC loader, signal
// extractor, and signal store together per spec §6's "Command surface":
// for each BLF file, decode every configured bus's frames against its DBC
// set and stream the resulting store to the downstream MDF/MF4 writer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JanSpindler/blf2mdf/blf"
	"github.com/JanSpindler/blf2mdf/dbcparse"
	"github.com/JanSpindler/blf2mdf/extract"
	"github.com/JanSpindler/blf2mdf/internal/logging"
	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
	"github.com/JanSpindler/blf2mdf/internal/options"
	"github.com/JanSpindler/blf2mdf/store"
)

// Config configures one run of the pipeline.
type Config struct {
	// BusDBCPaths[i] is the ordered set of DBC file paths for bus i
	// (spec §6 "an ordered set of DBC file paths" per bus).
	BusDBCPaths [][]string
	// Sink constructs the downstream writer's input stream for a BLF
	// file's output path (typically spawning the MDF/MF4 writer process
	// and returning its stdin, per spec §4.4/§5). Defaults to writing a
	// ".stream" sibling file when nil, so the CLI is runnable without the
	// external writer wired up.
	Sink func(outputPath string) (io.WriteCloser, error)
}

// Option configures a Config.
type Option = options.Option[*Config]

// WithSink overrides how the per-file output stream is produced.
func WithSink(sink func(outputPath string) (io.WriteCloser, error)) Option {
	return options.NoError(func(c *Config) { c.Sink = sink })
}

// Run processes each BLF file in files independently: a failure in one
// file is logged and does not abort the rest (spec §7 "failure in one
// must not abort the remainder"). It returns the number of files that
// failed.
func Run(ctx context.Context, files []string, busDBCPaths [][]string, opts ...Option) (failed int, err error) {
	if len(busDBCPaths) == 0 {
		return 0, errNoBuses
	}

	cfg := &Config{BusDBCPaths: busDBCPaths, Sink: defaultSink}
	if applyErr := options.Apply(cfg, opts...); applyErr != nil {
		return 0, fmt.Errorf("pipeline: apply options: %w", applyErr)
	}

	if cfg.Sink == nil {
		cfg.Sink = defaultSink
	}

	busDBCs, err := loadDBCs(cfg.BusDBCPaths)
	if err != nil {
		return 0, fmt.Errorf("pipeline: load DBCs: %w", err)
	}

	idx := extract.BuildIndex(busDBCs)

	for _, path := range files {
		if ctx.Err() != nil {
			return failed, ctx.Err()
		}

		if err := processFile(idx, path, cfg.Sink); err != nil {
			logging.L().Error("file_failed", "file", path, "error", err)
			metricsrv.FilesFailed.Inc()
			metricsrv.IncError(metricsrv.ErrBlfRead)
			failed++

			continue
		}

		metricsrv.FilesProcessed.Inc()
	}

	return failed, nil
}

func loadDBCs(busPaths [][]string) ([][]*dbcparse.Database, error) {
	busDBCs := make([][]*dbcparse.Database, len(busPaths))

	for bus, paths := range busPaths {
		dbs := make([]*dbcparse.Database, 0, len(paths))

		for _, p := range paths {
			db, err := dbcparse.ParseFile(p)
			if err != nil {
				metricsrv.IncError(metricsrv.ErrDbcParse)

				return nil, fmt.Errorf("pipeline: bus %d dbc %s: %w", bus, p, err)
			}

			dbs = append(dbs, db)
		}

		busDBCs[bus] = dbs
	}

	return busDBCs, nil
}

// processFile decodes one BLF file end to end and streams its signal
// store to the sink.
func processFile(idx *extract.DecodeIndex, path string, sink func(string) (io.WriteCloser, error)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rd, err := blf.NewReader(f)
	if err != nil {
		return fmt.Errorf("read header %s: %w", path, err)
	}

	st := store.New()
	dec := extract.NewDecoder(idx, st)

	for frame, err := range rd.Frames() {
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}

		dec.Decode(frame)
	}

	metricsrv.ActiveSignals.Set(float64(st.SignalCount()))

	out := outputPath(path)

	w, err := sink(out)
	if err != nil {
		metricsrv.IncError(metricsrv.ErrSinkWrite)

		return fmt.Errorf("open sink for %s: %w", out, err)
	}

	defer func() {
		if closeErr := w.Close(); closeErr != nil {
			logging.L().Warn("sink_close_error", "file", out, "error", closeErr)
		}
	}()

	if err := st.WriteToStream(w); err != nil {
		metricsrv.IncError(metricsrv.ErrSinkWrite)

		return fmt.Errorf("write stream for %s: %w", out, err)
	}

	logging.L().Info("file_processed", "file", path, "output", out, "signals", st.SignalCount())

	return nil
}

// outputPath mirrors spec §6: "the same base name with extension .mf4".
// The pipeline itself only ever writes the §6 handoff stream; the .mf4
// artifact is produced by the downstream writer consuming that stream.
func outputPath(blfPath string) string {
	ext := filepath.Ext(blfPath)
	base := strings.TrimSuffix(blfPath, ext)

	return base + ".mf4"
}

func defaultSink(outputPath string) (io.WriteCloser, error) {
	streamPath := outputPath + ".stream"

	f, err := os.Create(streamPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", streamPath, err)
	}

	return f, nil
}

var errNoBuses = errors.New("pipeline: no buses configured")

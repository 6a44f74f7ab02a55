package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JanSpindler/blf2mdf/internal/metricsrv"
	"github.com/JanSpindler/blf2mdf/pipeline"
	"github.com/spf13/cobra"
)

var (
	dbcFlags    []string
	logFormat   string
	logLevel    string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "blf2mdf [flags] BLF_FILE...",
	Short: "Decode Vector BLF CAN logs into MDF/MF4 signal streams",
	Long: `blf2mdf decodes one or more Vector BLF log files, extracts named,
physical-unit signals by matching each CAN frame against the DBC
descriptors configured for its bus, and writes the resulting signal
store, in the stream format a downstream MDF/MF4 writer reads, to a
file named after the input with the extension .mf4.stream.

Each --dbc flag attaches one DBC file to a bus, in the form BUS:PATH
(bus indices start at 0). A bus may have multiple DBC files; list
--dbc repeatedly in the order they should be searched.

Example:
  blf2mdf --dbc 0:powertrain.dbc --dbc 0:body.dbc --dbc 1:chassis.dbc log1.blf log2.blf`,
	SilenceUsage:  true,
	SilenceErrors: false,
	Args:          cobra.MinimumNArgs(1),
	RunE:          runConvert,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVar(&dbcFlags, "dbc", nil, "BUS:PATH DBC file assignment, repeatable")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	setupLogger(logFormat, logLevel)
	metricsrv.InitBuildInfo(version, commit, date)

	if metricsAddr != "" {
		srv := metricsrv.StartHTTP(metricsAddr)
		defer srv.Close()
	}

	busDBCPaths, err := parseBusDBCFlags(dbcFlags)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failed, err := pipeline.Run(ctx, args, busDBCPaths)
	if err != nil {
		return fmt.Errorf("blf2mdf: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("blf2mdf: %d of %d files failed", failed, len(args))
	}

	return nil
}

// parseBusDBCFlags turns a flat "--dbc BUS:PATH" flag set into the
// per-bus ordered DBC path lists spec §6's "Command surface" expects.
func parseBusDBCFlags(flags []string) ([][]string, error) {
	maxBus := -1

	parsed := make([]struct {
		bus  int
		path string
	}, 0, len(flags))

	for _, f := range flags {
		bus, path, ok := strings.Cut(f, ":")
		if !ok || path == "" {
			return nil, fmt.Errorf("blf2mdf: malformed --dbc flag %q, expected BUS:PATH", f)
		}

		busIdx, err := strconv.Atoi(bus)
		if err != nil || busIdx < 0 {
			return nil, fmt.Errorf("blf2mdf: malformed bus index in --dbc flag %q", f)
		}

		parsed = append(parsed, struct {
			bus  int
			path string
		}{busIdx, path})

		if busIdx > maxBus {
			maxBus = busIdx
		}
	}

	if maxBus < 0 {
		return nil, fmt.Errorf("blf2mdf: at least one --dbc BUS:PATH flag is required")
	}

	busDBCPaths := make([][]string, maxBus+1)
	for _, p := range parsed {
		busDBCPaths[p.bus] = append(busDBCPaths[p.bus], p.path)
	}

	return busDBCPaths, nil
}

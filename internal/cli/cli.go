package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"bsp-archiver/internal/archive"
	"bsp-archiver/internal/cache"
	"bsp-archiver/internal/config"
	"bsp-archiver/internal/filewalker"
	"bsp-archiver/internal/graph"
	"bsp-archiver/internal/pipeline"
	"bsp-archiver/internal/resource"

	"github.com/blang/semver"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Version is the release version, overridable with -ldflags.
var Version = "0.2.0"

// Execute runs the CLI application.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd := &cobra.Command{
		Use:          "bsparchive",
		Short:        "Identifies and archives all dependencies for GoldSrc bsp files",
		Long:         "Reads the entity lump of Half-Life maps, resolves every model, sound, sprite, sky and wad they reference, and bundles the files that are not part of the base game into one zip per map.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("no-exclude", false, "do not skip files shipped with the base game")
	rootCmd.PersistentFlags().Int("workers", 0, "maps processed concurrently (default from WORKER_COUNT, 1)")
	rootCmd.PersistentFlags().BoolP("recursive", "r", false, "search map directories recursively")

	rootCmd.AddCommand(archiveCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(sharedCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// options merges flags over the environment configuration.
type options struct {
	cfg       *config.Config
	noExclude bool
	workers   int
	recursive bool
}

func loadOptions(cmd *cobra.Command) *options {
	cfg := config.Load()
	flags := cmd.Flags()

	verbose, _ := flags.GetBool("verbose")
	if verbose || cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	opts := &options{
		cfg:       cfg,
		noExclude: cfg.NoExclude,
		workers:   cfg.WorkerCount,
		recursive: cfg.Recursive,
	}
	if flags.Changed("no-exclude") {
		opts.noExclude, _ = flags.GetBool("no-exclude")
	}
	if flags.Changed("workers") {
		opts.workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("recursive") {
		opts.recursive, _ = flags.GetBool("recursive")
	}
	return opts
}

const archiveLong = `Writes <output>/<map>.zip for every map with the files it needs from the game directory.
An existing <map>.zip is kept and the map is reported as failed; pass --overwrite to replace it.`

func archiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <bsp|directory>",
		Short: "Archive the dependencies of a map or a directory of maps",
		Long:  archiveLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)
			gameDir, _ := cmd.Flags().GetString("gamedir")
			output, _ := cmd.Flags().GetString("output")
			overwrite, _ := cmd.Flags().GetBool("overwrite")
			record, _ := cmd.Flags().GetBool("graph")

			if gameDir == "" {
				gameDir = opts.cfg.GameDir
			}
			if output == "" {
				output = opts.cfg.OutputDir
			}
			if !cmd.Flags().Changed("overwrite") {
				overwrite = opts.cfg.Overwrite
			}
			return runArchive(opts, args[0], gameDir, output, overwrite, record)
		},
	}

	cmd.Flags().StringP("gamedir", "g", "", "the game directory (detected from the input when empty)")
	cmd.Flags().StringP("output", "o", "", "where to write the zip files")
	cmd.Flags().Bool("overwrite", false, "replace existing archives instead of failing the map")
	cmd.Flags().Bool("graph", false, "record map dependencies in Neo4j (needs NEO4J_URI)")

	return cmd
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <bsp|directory>",
		Short: "Print the dependencies of a map or a directory of maps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)
			asJSON, _ := cmd.Flags().GetBool("json")
			return runList(opts, args[0], cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().Bool("json", false, "print JSON instead of text")
	return cmd
}

func sharedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shared",
		Short: "Show resources required by several recorded maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := loadOptions(cmd)
			minMaps, _ := cmd.Flags().GetInt("min")
			path, _ := cmd.Flags().GetString("path")
			return runShared(opts, minMaps, path, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int("min", 2, "minimum number of maps sharing a resource")
	cmd.Flags().String("path", "", "only list the maps requiring this resource")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := semver.ParseTolerant(Version)
			if err != nil {
				return fmt.Errorf("parse version %q: %w", Version, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "bsparchive %s\n", v)
			return nil
		},
	}
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, stopping after the current map...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newDriver builds the pipeline, attaching the PostgreSQL resolution cache
// when DATABASE_URL is set. The returned close function releases it.
func newDriver(ctx context.Context, opts *options) (*pipeline.Driver, func(), error) {
	pOpts := pipeline.Options{
		NoExclude: opts.noExclude,
		Workers:   opts.workers,
	}
	closeFn := func() {}

	if opts.cfg.DatabaseURL != "" {
		pgPool, err := pgxpool.New(ctx, opts.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect PostgreSQL: %w", err)
		}
		if err := pgPool.Ping(ctx); err != nil {
			pgPool.Close()
			return nil, nil, fmt.Errorf("ping PostgreSQL: %w", err)
		}
		log.Info().Msg("Connected to PostgreSQL")

		rc := cache.NewResolutionCache(pgPool)
		if err := rc.EnsureSchema(ctx); err != nil {
			pgPool.Close()
			return nil, nil, err
		}
		if err := rc.Preload(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to preload cache")
		}
		pOpts.Cache = rc
		closeFn = pgPool.Close
	}

	return pipeline.NewDriver(pOpts), closeFn, nil
}

// connectGraph opens the Neo4j driver configured by NEO4J_URI.
func connectGraph(ctx context.Context, cfg *config.Config) (neo4j.DriverWithContext, error) {
	if cfg.Neo4jURI == "" {
		return nil, errors.New("NEO4J_URI is not set")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.Neo4jURI, neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""))
	if err != nil {
		return nil, fmt.Errorf("connect Neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Msg("Connected to Neo4j")
	return driver, nil
}

func resolve(ctx context.Context, opts *options, input string) ([]pipeline.Result, error) {
	w := filewalker.NewWalker()
	w.Recursive = opts.recursive
	maps, err := w.Walk(input)
	if err != nil {
		return nil, err
	}
	if len(maps) == 0 {
		return nil, fmt.Errorf("no %s files found in %s", filewalker.MapExtension, input)
	}

	driver, closeFn, err := newDriver(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return driver.ProcessBatch(ctx, maps)
}

func logFailure(res pipeline.Result) {
	ev := log.Error().Str("map", res.Name)
	var mapErr *pipeline.MapError
	if errors.As(res.Err, &mapErr) {
		ev = ev.Str("stage", string(mapErr.Stage)).Err(mapErr.Err)
	} else {
		ev = ev.Err(res.Err)
	}
	ev.Msg("Failed processing map")
}

func finish(results []pipeline.Result) error {
	summary := pipeline.Summarize(results)
	log.Info().
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("Done")

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d maps failed", summary.Failed, len(results))
	}
	return nil
}

// runArchive handles the `archive` command.
func runArchive(opts *options, input, gameDir, output string, overwrite, record bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	if output == "" {
		return errors.New("missing output directory (--output)")
	}
	if info, err := os.Stat(output); err != nil || !info.IsDir() {
		return fmt.Errorf("missing or invalid output directory: %s", output)
	}

	if gameDir == "" {
		detected, err := filewalker.FindGameDir(input)
		if err != nil {
			return fmt.Errorf("missing or invalid game directory, the game directory is the mod folder for your Half-Life game: %w", err)
		}
		gameDir = detected
	}
	if !filewalker.IsGameDir(gameDir) {
		return fmt.Errorf("could not find a valid game directory at %s", gameDir)
	}
	log.Debug().Str("gamedir", gameDir).Msg("Game directory")

	var builder *graph.GraphBuilder
	if record {
		gd, err := connectGraph(ctx, opts.cfg)
		if err != nil {
			return err
		}
		defer gd.Close(ctx)

		builder = graph.NewGraphBuilder(gd)
		if err := builder.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure graph schema: %w", err)
		}
	}

	results, err := resolve(ctx, opts, input)
	if err != nil {
		return err
	}

	packager := &archive.Packager{GameDir: gameDir, OutputDir: output, Overwrite: overwrite}

	for i, res := range results {
		if res.Err != nil {
			logFailure(res)
			continue
		}

		stats, err := packager.Package(res.Name, res.Dependencies)
		if err != nil {
			results[i].Err = err
			log.Error().Err(err).Str("map", res.Name).Msg("Failed archiving map")
			continue
		}

		log.Info().
			Str("map", res.Name).
			Str("archive", packager.ArchivePath(res.Name)).
			Int("added", stats.Added).
			Int("missing", stats.Missing).
			Int("skipped", stats.Skipped).
			Msg("Archived map")

		if builder != nil {
			if err := builder.RecordMap(ctx, res); err != nil {
				log.Warn().Err(err).Str("map", res.Name).Msg("Failed to record map in graph")
			}
		}
	}

	return finish(results)
}

type listEntry struct {
	Map          string                `json:"map"`
	Name         string                `json:"name"`
	Dependencies []pipeline.Dependency `json:"dependencies"`
	Error        string                `json:"error,omitempty"`
}

// runList handles the `list` command.
func runList(opts *options, input string, out io.Writer, asJSON bool) error {
	ctx, cancel := setupContext()
	defer cancel()

	results, err := resolve(ctx, opts, input)
	if err != nil {
		return err
	}

	if asJSON {
		entries := make([]listEntry, len(results))
		for i, res := range results {
			entries[i] = listEntry{Map: res.Map, Name: res.Name, Dependencies: res.Dependencies}
			if res.Err != nil {
				entries[i].Error = res.Err.Error()
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(entries); err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
	} else {
		for _, res := range results {
			if res.Err != nil {
				logFailure(res)
				continue
			}
			WriteDependencies(out, res)
		}
	}

	return finish(results)
}

// WriteDependencies prints one path per line under a header naming the map.
// Paths shipped with the base game are commented out.
func WriteDependencies(out io.Writer, res pipeline.Result) {
	fmt.Fprintf(out, "// %s.bsp\n", res.Name)
	for _, d := range res.Dependencies {
		if d.Excluded {
			fmt.Fprintf(out, "// %s\n", d.Path)
		} else {
			fmt.Fprintln(out, d.Path)
		}
	}
}

// runShared handles the `shared` command.
func runShared(opts *options, minMaps int, path string, out io.Writer) error {
	ctx, cancel := setupContext()
	defer cancel()

	driver, err := connectGraph(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	querier := graph.NewGraphQuerier(driver)

	if path != "" {
		norm, err := resource.Normalize(path)
		if err != nil {
			return err
		}
		maps, err := querier.MapsRequiring(ctx, norm)
		if err != nil {
			return err
		}
		for _, m := range maps {
			fmt.Fprintln(out, m)
		}
		return nil
	}

	shared, err := querier.SharedResources(ctx, minMaps)
	if err != nil {
		return err
	}

	for _, sr := range shared {
		marker := ""
		if sr.Excluded {
			marker = " (base game)"
		}
		fmt.Fprintf(out, "%s%s: %d maps %v\n", sr.Path, marker, len(sr.Maps), sr.Maps)
	}
	return nil
}

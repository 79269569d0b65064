package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sundowner/kutx2spotify/internal/cache"
	"github.com/sundowner/kutx2spotify/internal/matcher"
	"github.com/sundowner/kutx2spotify/internal/services"
	"github.com/sundowner/kutx2spotify/internal/shared"
	"github.com/sundowner/kutx2spotify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	kutx        tasks.SongSource
	spotify     *services.SpotifyClient
	resolutions *cache.ResolutionCache
	playlists   *cache.PlaylistCache
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	engine      *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	KUTX        tasks.SongSource
	Spotify     *services.SpotifyClient
	Resolutions *cache.ResolutionCache
	Playlists   *cache.PlaylistCache
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Engine      *tasks.Engine
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	engine := opts.Engine
	if engine == nil {
		var resolver tasks.TrackResolver
		var publisher tasks.PlaylistPublisher
		if opts.Spotify != nil {
			var source matcher.ResolutionSource
			if opts.Resolutions != nil {
				source = opts.Resolutions
			}
			resolver = matcher.New(opts.Spotify, source)
			publisher = opts.Spotify
		}

		var snapshots tasks.SnapshotStore
		if opts.Playlists != nil {
			snapshots = opts.Playlists
		}
		var resolutions tasks.ResolutionStore
		if opts.Resolutions != nil {
			resolutions = opts.Resolutions
		}

		engine = tasks.NewEngine(opts.KUTX, resolver, publisher, snapshots, resolutions)
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		kutx:        opts.KUTX,
		spotify:     opts.Spotify,
		resolutions: opts.Resolutions,
		playlists:   opts.Playlists,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		engine:      engine,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, authCommand, reviewCommand, resolveCommand, cacheCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

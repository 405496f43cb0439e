package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type fetchCmd struct {
	Args struct {
		URLs []string `positional-arg-name:"URL" description:"Feed source URLs to ingest"`
	} `positional-args:"yes"`
}

type publishCmd struct {
	Output     string `long:"output" short:"o" env:"OUTPUT_PATH" default:"feed.xml" description:"Path the combined output feed is written to"`
	HostPrefix string `long:"host-prefix" env:"HOST_PREFIX" description:"Public prefix for relocated media; enables the media relocation pass"`
}

type rawCfg struct {
	DBPath      string `long:"db" env:"DB_PATH" default:"db.json" description:"Path of the persisted feed state document"`
	SourcesFile string `long:"sources" env:"SOURCES_FILE" description:"Optional YAML file listing feed sources and per-source options"`
	MediaDir    string `long:"media-dir" env:"MEDIA_DIR" default:"output/media" description:"Directory relocated media assets are stored under"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" default:"FeedJunction/1.0" description:"User agent string for HTTP requests"`
	Timeout     int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of parallel workers for ingest and media relocation"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Fetch   fetchCmd   `command:"fetch" description:"Fetch the given feed sources and merge them into the state store"`
	Publish publishCmd `command:"publish" description:"Synthesize and serialize the combined output feed"`
}

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if parser.Active == nil {
		return nil, fmt.Errorf("no command given")
	}

	cfg := &Cfg{
		DBPath:      raw.DBPath,
		SourcesFile: raw.SourcesFile,
		MediaDir:    raw.MediaDir,
		UserAgent:   raw.UserAgent,
		Timeout:     raw.Timeout,
		WorkerCount: raw.WorkerCount,
		Debug:       raw.Debug,
		Version:     GetVersion(),
		Command:     parser.Active.Name,
		URLs:        raw.Fetch.Args.URLs,
		OutputPath:  raw.Publish.Output,
		HostPrefix:  raw.Publish.HostPrefix,
	}

	return cfg, nil
}

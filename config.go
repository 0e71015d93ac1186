package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/illusionman1212/gifmetadata-go/pkg/gifmeta"
)

type Config struct {
	Verbose bool
	Dev     bool
	JSON    bool
	Strict  bool
	NoColor bool

	Jobs      int
	ChunkSize int

	Store  bool
	DSN    string
	Search string

	Files []string
}

func getenv(env func(string) string, key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}

func getenvInt(env func(string) string, key string, def int) (int, error) {
	v := env(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// LoadConfig reads flags from args, falling back to the environment for
// anything not given on the command line. flag.ErrHelp is returned for
// -h/--help.
func LoadConfig(args []string, env func(string) string, usage io.Writer) (Config, error) {
	var cfg Config

	jobs, err := getenvInt(env, "GIFMETA_JOBS", 4)
	if err != nil {
		return cfg, err
	}
	chunk, err := getenvInt(env, "GIFMETA_CHUNK_SIZE", gifmeta.DefaultChunkSize)
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("gifmetadata", flag.ContinueOnError)
	fs.SetOutput(usage)
	fs.Usage = func() { printHelp(usage) }

	fs.BoolVar(&cfg.Verbose, "v", false, "")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "")
	fs.BoolVar(&cfg.Dev, "d", false, "")
	fs.BoolVar(&cfg.Dev, "dev", false, "")
	fs.BoolVar(&cfg.JSON, "json", false, "")
	fs.BoolVar(&cfg.Strict, "strict", false, "")
	fs.BoolVar(&cfg.NoColor, "no-color", env("NO_COLOR") != "", "")
	fs.IntVar(&cfg.Jobs, "jobs", jobs, "")
	fs.IntVar(&cfg.ChunkSize, "chunk", chunk, "")
	fs.BoolVar(&cfg.Store, "store", false, "")
	fs.StringVar(&cfg.DSN, "dsn", getenv(env, "GIFMETA_DATABASE_URL", ""), "")
	fs.StringVar(&cfg.Search, "search", "", "")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Files = fs.Args()

	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}
	if cfg.ChunkSize < 1 {
		return cfg, fmt.Errorf("chunk size must be at least 1, got %d", cfg.ChunkSize)
	}
	if (cfg.Store || cfg.Search != "") && cfg.DSN == "" {
		return cfg, errors.New("-store and -search need -dsn or GIFMETA_DATABASE_URL")
	}
	return cfg, nil
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `gifmetadata

OVERVIEW:
    GIFs can carry comments, which early web authors used for copyright
    and attribution notices, as well as application extensions and plain
    text blocks. Most programs no longer show this data; gifmetadata
    prints it without decoding any images.

OUTPUT:
    comment:       Text comments, usually copyright or attribution.
    application:   Application extension identifier and auth code, for
                   example NETSCAPE2.0. Each data sub-block follows on its
                   own line prefixed with "-" and may contain binary data.
    plain text:    Text from the rarely used 89a plain text extension.

USAGE: gifmetadata [options] file...

OPTIONS:
    -h / --help      Display help, options and program info
    -v / --verbose   Display more data about the gif, e.g. width/height
    -d / --dev       Display inner program workings intended for developers
    -json            Write newline-delimited JSON instead of text
    -strict          Stop reading at the trailer
    -no-color        Disable colored output (also NO_COLOR)
    -jobs N          Files parsed at once (GIFMETA_JOBS, default 4)
    -chunk N         Read size in bytes (GIFMETA_CHUNK_SIZE, default 256)
    -store           Save results to Postgres
    -dsn URL         Postgres connection string (GIFMETA_DATABASE_URL)
    -search TEXT     Search saved extension text instead of reading files

Zstandard-compressed files are decompressed automatically.
`)
}

package main

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/illusionman1212/gifmetadata-go/internal/store"
	"github.com/illusionman1212/gifmetadata-go/pkg/gifmeta"
	"github.com/illusionman1212/gifmetadata-go/pkg/render"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, env func(string) string, stdout, stderr io.Writer) int {
	cfg, err := LoadConfig(args, env, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "[error] %v\n", err)
		return 1
	}

	logger := newLogger(stderr, cfg)
	logger.Debug("dev flag active", "verbose", cfg.Verbose)

	var db *store.Store
	if cfg.Store || cfg.Search != "" {
		db, err = store.Open(ctx, cfg.DSN)
		if err != nil {
			fmt.Fprintf(stderr, "[error] opening store: %v\n", err)
			return 1
		}
		defer db.Close()
	}

	if cfg.Search != "" {
		return search(ctx, db, cfg.Search, stdout, stderr)
	}

	if len(cfg.Files) == 0 {
		fmt.Fprintln(stderr, "[error] you never specified a file to open")
		return 1
	}

	outputs := make([]bytes.Buffer, len(cfg.Files))
	codes := make([]int, len(cfg.Files))
	sem := make(chan struct{}, cfg.Jobs)
	var wg sync.WaitGroup
	for i, name := range cfg.Files {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, name string) {
			defer wg.Done()
			defer func() { <-sem }()
			x := &extractor{cfg: cfg, log: logger.With("file", name), db: db, multi: len(cfg.Files) > 1}
			codes[i] = x.extract(ctx, name, &outputs[i])
		}(i, name)
	}
	wg.Wait()

	code := 0
	for i := range outputs {
		if _, err := stdout.Write(outputs[i].Bytes()); err != nil {
			logger.Error("writing output", "error", err)
			return 1
		}
		code = max(code, codes[i])
	}
	return code
}

func newLogger(w io.Writer, cfg Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelInfo
	}
	if cfg.Dev {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

type extractor struct {
	cfg   Config
	log   *slog.Logger
	db    *store.Store
	multi bool
}

// extract parses one file and writes its output to out.
func (x *extractor) extract(ctx context.Context, name string, out io.Writer) int {
	text := render.NewText(out, !x.cfg.NoColor && !x.cfg.JSON)
	text.Dev = x.cfg.Dev
	if x.multi {
		text.Prefix = name + ": "
	}
	var js *render.JSON
	if x.cfg.JSON {
		js = render.NewJSON(out, name)
	}
	fail := func(err error) int {
		if js == nil {
			text.Error(name, err)
			return 1
		}
		if serr := js.Summary(nil, err); serr != nil {
			x.log.Error("writing json", "error", serr)
		}
		return 1
	}

	st, err := os.Stat(name)
	if err != nil || st.IsDir() {
		return fail(errors.New("file cannot be accessed"))
	}
	x.log.Info("opened file", "size", st.Size())

	f, err := os.Open(name)
	if err != nil {
		return fail(err)
	}
	defer f.Close()

	hash := sha256.New()
	src := gifmeta.NewReaderSource(io.TeeReader(f, hash), x.cfg.ChunkSize)
	defer src.Close()

	var sink gifmeta.Handler = text
	if js != nil {
		sink = js
	}
	rec := &gifmeta.Recorder{}
	if x.db != nil {
		sink = gifmeta.MultiHandler(sink, rec)
	}

	policy := gifmeta.TrailerContinue
	if x.cfg.Strict {
		policy = gifmeta.TrailerStop
	}
	res, err := gifmeta.Parse(src, sink,
		gifmeta.WithLogger(x.log),
		gifmeta.WithTrailerPolicy(policy),
	)
	if src.Compressed() {
		x.log.Info("input is zstd compressed")
	}

	if js != nil {
		if serr := js.Summary(res, err); serr != nil {
			x.log.Error("writing json", "error", serr)
			return 1
		}
	}
	if err != nil {
		if js == nil {
			text.Error(name, describe(err))
		}
		return 1
	}
	if js == nil {
		text.Warnings(res)
	}

	if x.db != nil {
		id, err := x.db.Save(ctx, store.FileRecord{
			Path:   name,
			SHA256: hex.EncodeToString(hash.Sum(nil)),
			Result: res,
			Events: rec.Events,
		})
		if err != nil {
			x.log.Error("saving to store", "error", err)
			return 1
		}
		x.log.Info("saved to store", "id", id)
	}
	return 0
}

func describe(err error) error {
	switch {
	case errors.Is(err, gifmeta.ErrInvalidSignature):
		return fmt.Errorf("file does not appear to be a gif (wrong sig): %w", err)
	case errors.Is(err, gifmeta.ErrTruncatedHeader):
		return fmt.Errorf("file does not appear to be a gif (too small): %w", err)
	}
	return err
}

func search(ctx context.Context, db *store.Store, substr string, stdout, stderr io.Writer) int {
	matches, err := db.Search(ctx, substr)
	if err != nil {
		fmt.Fprintf(stderr, "[error] search: %v\n", err)
		return 1
	}
	for _, m := range matches {
		fmt.Fprintf(stdout, "%s: %s: %s\n", m.Path, m.Kind, m.Text)
	}
	if len(matches) == 0 {
		return 1
	}
	return 0
}

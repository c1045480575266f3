package seqidx

import (
	"go.uber.org/zap"

	"github.com/havingwolf/seqidx/cache"
	"github.com/havingwolf/seqidx/fasta"
	"github.com/havingwolf/seqidx/scanner"
)

// Options holds every knob Open accepts, assembled by applying the Option
// functions over defaultOptions.
type Options struct {
	Glob        string
	IDTransform func(headerLine []byte) string
	MaxOpen     int
	Reindex     bool
	StoreArgs   any
	IndexName   string
	Clean       bool
	Debug       bool
	Lenient     bool
	Logger      *zap.Logger
	Scanner     scanner.Strategy
}

func defaultOptions() Options {
	return Options{
		Glob:    "*",
		MaxOpen: cache.DefaultMaxOpen,
		Scanner: fasta.New(),
	}
}

// Option configures an Engine at Open time.
type Option func(*Options)

// WithGlob restricts directory input to files matching pattern. Ignored
// for single-file or explicit-list input.
func WithGlob(pattern string) Option {
	return func(o *Options) { o.Glob = pattern }
}

// WithIDTransform overrides scanner.DefaultID's header-line-to-id rule.
func WithIDTransform(fn func(headerLine []byte) string) Option {
	return func(o *Options) { o.IDTransform = fn }
}

// WithMaxOpen sets the file-handle cache's capacity.
func WithMaxOpen(n int) Option {
	return func(o *Options) { o.MaxOpen = n }
}

// WithReindex forces a full rebuild regardless of mtimes.
func WithReindex(force bool) Option {
	return func(o *Options) { o.Reindex = force }
}

// WithStoreArgs passes driver-specific arguments through to the store
// backend. The bundled LevelDB backend ignores it; it exists for
// alternative store.Store implementations.
func WithStoreArgs(args any) Option {
	return func(o *Options) { o.StoreArgs = args }
}

// WithIndexName overrides the default index-path naming rule.
func WithIndexName(name string) Option {
	return func(o *Options) { o.IndexName = name }
}

// WithClean marks the index for deletion when Close is called, useful for
// scratch indexes built over temporary input.
func WithClean(clean bool) Option {
	return func(o *Options) { o.Clean = clean }
}

// WithDebug enables the indexer's per-record id-collision warnings, which
// cost one extra store read per record and are written to the configured
// Logger.
func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

// WithLenient makes line-geometry violations warnings instead of fatal
// errors.
func WithLenient(lenient bool) Option {
	return func(o *Options) { o.Lenient = lenient }
}

// WithLogger supplies a zap.Logger for debug/warn output. Nil (the
// default) disables logging entirely.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithScanner overrides the default fasta.Scanner with another
// scanner.Strategy, for payload formats other than FASTA.
func WithScanner(s scanner.Strategy) Option {
	return func(o *Options) { o.Scanner = s }
}

// Package app wires together configuration, the API client, and the local
// archive into a single Deps struct that commands receive at runtime.
package app

import (
	"fmt"
	"log/slog"

	"github.com/derickschaefer/dex/internal/catalog"
	"github.com/derickschaefer/dex/internal/config"
	"github.com/derickschaefer/dex/internal/pokeapi"
	"github.com/derickschaefer/dex/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store is nil until RequireStore is called; most commands never touch it.
type Deps struct {
	Config *config.Config
	Client *pokeapi.Client
	Store  *store.Store
	Logger *slog.Logger
}

// New builds a Deps from resolved config.
func New(cfg *config.Config) *Deps {
	client := pokeapi.NewClient(pokeapi.Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout,
		Rate:        cfg.Rate,
		Concurrency: cfg.Concurrency,
		Debug:       cfg.Debug,
	})
	return &Deps{
		Config: cfg,
		Client: client,
		Logger: slog.Default(),
	}
}

// RequireStore opens the archive at Config.DBPath if it is not open yet.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	if d.Config.DBPath == "" {
		return fmt.Errorf("no archive path configured (set db_path or %s)", config.EnvDBPath)
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return err
	}
	d.Store = s
	return nil
}

// Close releases the archive handle, if one was opened.
func (d *Deps) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}

// NewCatalog builds a catalog state machine over the client. Zero page
// sizes and a nil logger in opts take the configured values.
func (d *Deps) NewCatalog(opts catalog.Options) *catalog.Catalog {
	if opts.PageSize == 0 {
		opts.PageSize = d.Config.PageSize
	}
	if opts.BulkLimit == 0 {
		opts.BulkLimit = d.Config.BulkLimit
	}
	if opts.Logger == nil {
		opts.Logger = d.Logger
	}
	return catalog.New(d.Client, opts)
}

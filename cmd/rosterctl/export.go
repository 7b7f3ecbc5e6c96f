package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nuptial-ops/wedding-manager/pkg/config"
	"github.com/nuptial-ops/wedding-manager/pkg/guest"
	"github.com/nuptial-ops/wedding-manager/pkg/lookup"
	"github.com/nuptial-ops/wedding-manager/pkg/recordstore"
	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"github.com/nuptial-ops/wedding-manager/pkg/storage"
	"github.com/nuptial-ops/wedding-manager/pkg/vendor"
	"github.com/nuptial-ops/wedding-manager/pkg/view"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type exportConfig struct {
	databaseConfig
	Redis  config.Redis  `envPrefix:"REDIS_"`
	Roster config.Roster
}

type exportOptions struct {
	weddingID uint
	view      string
	out       string
	search    string
}

func newExportCommand() *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a view of a wedding to a .docx or .csv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts)
		},
	}
	cmd.Flags().UintVar(&opts.weddingID, "wedding", 0, "id of the wedding")
	cmd.Flags().StringVar(&opts.view, "view", view.Guests, "view to export, guests or vendors")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "file to write, the extension picks the format")
	cmd.Flags().StringVar(&opts.search, "search", "", "only export rows matching the search text")
	_ = cmd.MarkFlagRequired("wedding")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

type loader interface {
	Load(ctx context.Context, weddingID uint) (roster.Schema, []roster.Row, error)
}

func runExport(ctx context.Context, opts exportOptions) error {
	format := filepath.Ext(opts.out)
	if format != ".docx" && format != ".csv" {
		return fmt.Errorf("can't tell the format of %q, use a .docx or .csv file", opts.out)
	}

	var cfg exportConfig
	if err := config.Parse(&cfg); err != nil {
		return err
	}
	logger := slog.Default()

	db, err := storage.NewDatabase(cfg.Postgresql, logger)
	if err != nil {
		return err
	}
	redisClient, err := storage.NewRedis(cfg.Redis.Address())
	if err != nil {
		return err
	}
	defer redisClient.Close()

	definitions, err := view.Load()
	if err != nil {
		return err
	}
	definition, err := definitions.Get(opts.view)
	if err != nil {
		return err
	}

	lookups := lookup.NewService(logger, lookup.NewRepository(db), redisClient, cfg.Roster.LookupCacheTTL, nopInvalidator{})
	var l loader
	switch opts.view {
	case view.Guests:
		l = guest.NewService(logger, definition, guest.NewRepository(db), lookups)
	case view.Vendors:
		l = vendor.NewService(logger, definition, recordstore.New(db, definition.Storage.Table), lookups)
	default:
		return fmt.Errorf("view %q can't be exported", opts.view)
	}

	schema, rows, err := l.Load(ctx, opts.weddingID)
	if err != nil {
		return err
	}
	rows, err = roster.Apply(schema, rows, roster.Query{Shared: roster.SharedFilter{Search: opts.search}})
	if err != nil {
		return err
	}
	export := roster.BuildExport(schema, rows)

	var buf bytes.Buffer
	if format == ".csv" {
		err = export.WriteCSV(&buf)
	} else {
		title := cases.Title(language.English).String(opts.view)
		err = roster.WriteDocx(&buf, title, export)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.out, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %q: %v", opts.out, err)
	}
	logger.Info("Exported", "wedding", opts.weddingID, "view", opts.view, "rows", len(rows), "file", opts.out)
	return nil
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateWedding(context.Context, uint) {}

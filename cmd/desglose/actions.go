package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/tsawler/desglose"
	"github.com/tsawler/desglose/config"
	"github.com/tsawler/desglose/internal/logger"
	"github.com/tsawler/desglose/model"
	"github.com/tsawler/desglose/numeric"
	"github.com/tsawler/desglose/overlay"
	"github.com/tsawler/desglose/server"
)

// BuildAction renders the breakdown PDF.
func BuildAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	p := pipeline(c, cfg, log)
	if v := c.String("template"); v != "" {
		p = p.TemplateFile(v)
	}
	if v := c.String("logo"); v != "" {
		p = p.LogoFile(v)
	}
	if v := c.String("date"); v != "" {
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			return fmt.Errorf("%w: --date must be YYYY-MM-DD, got %q", model.ErrInput, v)
		}
		p = p.Date(d)
	}
	if c.Bool("two-per-page") {
		p = p.TwoPerPage()
	}

	pdf, warnings, err := p.Build()
	if err != nil {
		return err
	}
	printWarnings(c, warnings)

	out := c.String("out")
	if err := os.WriteFile(out, pdf, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Fprintf(c.App.Writer, "wrote %s (%d bytes)\n", out, len(pdf))
	return nil
}

// ItemsAction prints the extracted line items.
func ItemsAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	items, warnings, err := pipeline(c, cfg, log).Items()
	if err != nil {
		return err
	}
	printWarnings(c, warnings)

	w := c.App.Writer
	fmt.Fprintf(w, "%-5s %-48s %-6s %10s %14s\n", "ITEM", "DESCRIPTION", "UNIT", "QTY", "TOTAL")
	fmt.Fprintln(w, strings.Repeat("-", 87))
	for _, it := range items {
		fmt.Fprintf(w, "%-5d %-48s %-6s %10s %14s\n",
			it.SequenceNumber,
			overlay.Clip(it.Description, 48),
			overlay.Clip(it.Unit, 6),
			strconv.FormatFloat(it.Quantity, 'f', -1, 64),
			numeric.FormatThousands(it.TotalPrice))
	}
	fmt.Fprintf(w, "\nTotal: %d items\n", len(items))
	return nil
}

// MatchAction prints the catalog match of every item.
func MatchAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	matches, warnings, err := pipeline(c, cfg, log).Matches()
	if err != nil {
		return err
	}
	printWarnings(c, warnings)

	w := c.App.Writer
	fmt.Fprintf(w, "%-5s %-40s %-6s %-30s %-30s\n", "ITEM", "DESCRIPTION", "SCORE", "TOOLS", "MATERIALS")
	fmt.Fprintln(w, strings.Repeat("-", 115))
	fallbacks := 0
	for _, m := range matches {
		score := strconv.FormatFloat(m.Score, 'f', 2, 64)
		if m.Fallback {
			score = "dflt"
			fallbacks++
		}
		fmt.Fprintf(w, "%-5d %-40s %-6s %-30s %-30s\n",
			m.Item.SequenceNumber,
			overlay.Clip(m.Item.Description, 40),
			score,
			overlay.Clip(m.ToolText, 30),
			overlay.Clip(m.MaterialText, 30))
	}
	fmt.Fprintf(w, "\nTotal: %d items, %d default matches\n", len(matches), fallbacks)
	return nil
}

// ServeAction runs the HTTP server until interrupted.
func ServeAction(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	defer log.Sync()

	if v := c.String("listen"); v != "" {
		cfg.Listen = v
	}

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return server.New(cfg, log).ListenAndServe(ctx)
}

// setup loads the configuration and creates the run logger.
func setup(c *cli.Context) (*config.Config, *logger.Logger, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, nil, err
		}
	}
	if mode := c.String("log-mode"); mode != "" {
		cfg.LogMode = mode
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log.With("run_id", uuid.NewString(), "command", c.Command.Name), nil
}

// pipeline opens the input spreadsheet and applies the catalog flag.
func pipeline(c *cli.Context, cfg *config.Config, log *logger.Logger) *desglose.Pipeline {
	p := desglose.OpenFile(c.String("input")).Config(cfg).Logger(log.Zap())
	if v := c.String("catalog"); v != "" {
		p = p.CatalogFile(v)
	}
	return p
}

func printWarnings(c *cli.Context, warnings []model.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(c.App.ErrWriter, "warning:", w)
	}
}

// exitCode is 2 for problems with the inputs and 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, model.ErrInput) || errors.Is(err, model.ErrFormat) {
		return 2
	}
	return 1
}

package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vukan322/devfolio/internal/aggregate"
	"github.com/vukan322/devfolio/internal/render"
)

// CardCmd renders one snapshot to disk, for READMEs and static hosting.
type CardCmd struct {
	Out     string        `short:"o" help:"Output file; .svg or .html" default:"devfolio.svg"`
	Timeout time.Duration `help:"Deadline for all provider queries" default:"10s"`
}

type cardRenderer func(title string, cards []render.Card) ([]byte, error)

func renderGridHTML(_ string, cards []render.Card) ([]byte, error) {
	grid, err := render.RenderGrid(cards)
	return []byte(grid), err
}

// rendererFor picks the output format from the file extension.
func rendererFor(path string) (cardRenderer, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".svg":
		return render.RenderSVG, nil
	case ".html", ".htm":
		return renderGridHTML, nil
	default:
		return nil, fmt.Errorf("card: unsupported output extension %q (want .svg or .html)", ext)
	}
}

func (c *CardCmd) Run(g *Global, root *CLI) error {
	renderCards, err := rendererFor(c.Out)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	posts, err := loadPosts(cfg.Content.Dir, g.Logger)
	if err != nil {
		return err
	}

	w, err := wire(cfg, root.Demo, posts, g.Logger, nil)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	agg := aggregate.New(w.aggregate)
	snap := agg.Snapshot(ctx)
	cards := render.Cards(snap, render.Options{ProfileURL: w.profile, HostName: agg.HostName()})

	out, err := renderCards(cfg.Site.Title, cards)
	if err != nil {
		return fmt.Errorf("card: render: %w", err)
	}

	if err := os.WriteFile(c.Out, out, 0o644); err != nil {
		return fmt.Errorf("card: write %s: %w", c.Out, err)
	}

	fmt.Printf("devfolio: wrote %s via %s (%d fields unavailable)\n",
		c.Out, agg.HostName(), snap.MissingFields())
	return nil
}

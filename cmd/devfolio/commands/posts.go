package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
)

type PostsCmd struct{}

func (p *PostsCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	posts, err := loadPosts(cfg.Content.Dir, g.Logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tPUBLISHED\tTITLE\tFINGERPRINT")
	for _, post := range posts.All() {
		published := "-"
		if !post.PublishedAt.IsZero() {
			published = post.PublishedAt.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", post.Slug, published, post.Title, post.Fingerprint)
	}
	return tw.Flush()
}

package content

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"github.com/vukan322/devfolio/internal/markup"
)

type Post struct {
	Title       string    `yaml:"title"`
	Slug        string    `yaml:"slug"`
	PublishedAt time.Time `yaml:"publishedAt"`
	Category    string    `yaml:"category"`
	Author      string    `yaml:"author"`
	Tags        []string  `yaml:"tags"`
	Keywords    []string  `yaml:"keywords"`
	Excerpt     string    `yaml:"excerpt"`
	Image       string    `yaml:"image"`
	Draft       bool      `yaml:"draft"`

	Body        markup.Payload `yaml:"-"`
	Fingerprint string         `yaml:"-"`
	SourcePath  string         `yaml:"-"`
}

// ParsePost decodes a post file. The slug falls back to the file name.
func ParsePost(path string, src []byte) (*Post, error) {
	fm, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, fmt.Errorf("content: %s: %w", path, err)
	}

	post := &Post{}
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, post); err != nil {
			return nil, fmt.Errorf("content: %s: parse front matter: %w", path, err)
		}
	}

	if post.Slug == "" {
		base := filepath.Base(path)
		post.Slug = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if post.Title == "" {
		post.Title = post.Slug
	}

	post.Body = markup.Payload(body)
	post.Fingerprint = mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body))
	post.SourcePath = path
	return post, nil
}

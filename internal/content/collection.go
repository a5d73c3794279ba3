package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("post not found")

var postExtensions = map[string]bool{".md": true, ".mdx": true, ".markdown": true}

// Collection is the ordered set of published posts, newest first. It is
// safe for concurrent use; Replace swaps the whole set at once.
type Collection struct {
	mu     sync.RWMutex
	posts  []*Post
	bySlug map[string]*Post
}

func NewCollection(posts []*Post) *Collection {
	c := &Collection{}
	c.Replace(posts)
	return c
}

// LoadDir reads every post under dir. Drafts are skipped.
func LoadDir(dir string) (*Collection, error) {
	posts, err := readDir(dir)
	if err != nil {
		return nil, err
	}
	return NewCollection(posts), nil
}

func readDir(dir string) ([]*Post, error) {
	var posts []*Post
	seen := map[string]string{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !postExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("content: read %s: %w", path, err)
		}
		post, err := ParsePost(path, src)
		if err != nil {
			return err
		}
		if post.Draft {
			return nil
		}
		if prev, ok := seen[post.Slug]; ok {
			return fmt.Errorf("content: duplicate slug %q in %s and %s", post.Slug, prev, path)
		}
		seen[post.Slug] = path
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("content: load %s: %w", dir, err)
	}
	return posts, nil
}

func (c *Collection) Replace(posts []*Post) {
	sorted := make([]*Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
		}
		return sorted[i].Slug < sorted[j].Slug
	})

	bySlug := make(map[string]*Post, len(sorted))
	for _, p := range sorted {
		bySlug[p.Slug] = p
	}

	c.mu.Lock()
	c.posts = sorted
	c.bySlug = bySlug
	c.mu.Unlock()
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.posts)
}

// All returns the posts newest first. The slice is a copy.
func (c *Collection) All() []*Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Post, len(c.posts))
	copy(out, c.posts)
	return out
}

func (c *Collection) BySlug(slug string) (*Post, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return p, nil
}

package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePost(t *testing.T, dir, name, src string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestLoadDirOrdersNewestFirst(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "old.md", "---\ntitle: Old\npublishedAt: 2022-01-10\n---\nold body\n")
	writePost(t, dir, "new.mdx", "---\ntitle: New\npublishedAt: 2024-03-01\ntags: [go, web]\n---\nnew body\n")
	writePost(t, dir, "nested/mid.md", "---\ntitle: Mid\nslug: middle\npublishedAt: 2023-06-15\n---\n")
	writePost(t, dir, "draft.md", "---\ntitle: Draft\ndraft: true\n---\n")
	writePost(t, dir, "notes.txt", "ignored")

	c, err := LoadDir(dir)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	all := c.All()
	assert.Equal(t, "new", all[0].Slug)
	assert.Equal(t, "middle", all[1].Slug)
	assert.Equal(t, "old", all[2].Slug)
	assert.Equal(t, []string{"go", "web"}, all[0].Tags)
	assert.Equal(t, "new body\n", string(all[0].Body))
}

func TestLoadDirRejectsDuplicateSlugs(t *testing.T) {
	dir := t.TempDir()
	writePost(t, dir, "a.md", "---\nslug: same\n---\n")
	writePost(t, dir, "b.md", "---\nslug: same\n---\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate slug")
}

func TestBySlug(t *testing.T) {
	c := NewCollection([]*Post{{Slug: "hello", Title: "Hello"}})

	p, err := c.BySlug("hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)

	_, err = c.BySlug("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestReplaceSwapsPosts(t *testing.T) {
	c := NewCollection(nil)
	assert.Equal(t, 0, c.Len())

	c.Replace([]*Post{{Slug: "a"}, {Slug: "b"}})
	assert.Equal(t, 2, c.Len())

	all := c.All()
	all[0] = nil
	assert.NotNil(t, c.All()[0])
}

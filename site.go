package sitemath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Site layout produced by the static site generator.
// Paths are relative to the working directory.
const (
	SiteDir     = "_site"
	HomePage    = "index.html"
	PostsDir    = "_site/posts"
	PagesDir    = "_site/blog"
	ProjectsDir = "_site/projects"
)

// Collection names.
const (
	CollectionHome     = "home"
	CollectionPosts    = "posts"
	CollectionPages    = "pages"
	CollectionProjects = "projects"
)

// Site returns the collections of the fixed site layout rooted at root.
// The home page comes first as a singleton, followed by posts, pages and
// projects. Each directory is listed once; later changes are not seen.
func Site(root string) ([]Collection, error) {
	home := Collection{
		Name: CollectionHome,
		Dir:  filepath.Join(root, SiteDir),
	}
	home.Items = []Item{{Collection: CollectionHome, Dir: home.Dir, Name: HomePage}}

	collections := []Collection{home}
	for _, c := range []struct{ name, dir string }{
		{CollectionPosts, PostsDir},
		{CollectionPages, PagesDir},
		{CollectionProjects, ProjectsDir},
	} {
		coll, err := ListCollection(c.name, filepath.Join(root, c.dir))
		if err != nil {
			return nil, err
		}
		collections = append(collections, coll)
	}
	return collections, nil
}

// ListCollection lists the regular files directly inside dir, sorted by name.
// Subdirectories are skipped.
func ListCollection(name, dir string) (Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Collection{}, fmt.Errorf("%w: %s: %w", ErrListDirectory, name, err)
	}

	coll := Collection{Name: name, Dir: dir}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		coll.Items = append(coll.Items, Item{Collection: name, Dir: dir, Name: e.Name()})
	}
	return coll, nil
}

// countItems returns the total number of items across collections.
func countItems(collections []Collection) int {
	n := 0
	for _, c := range collections {
		n += c.Len()
	}
	return n
}

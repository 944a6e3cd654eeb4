package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search/engines"
)

// Namespace names a page directory can carry, with their canonical IDs.
var namespacesByName = map[string]int{
	"":          0,
	"User":      2,
	"Project":   4,
	"File":      6,
	"MediaWiki": 8,
	"Template":  10,
	"Help":      12,
	"Category":  14,
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:      "index",
		Usage:     "Build or update the local search index from a directory of pages",
		ArgsUsage: "dir",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := setup(c); err != nil {
				return err
			}
			if c.Args().Len() == 0 {
				return fmt.Errorf("no page directory given")
			}

			_, eng, err := newParserFunction()
			if err != nil {
				return err
			}

			idx, ok := eng.(engines.Indexer)
			if !ok {
				return fmt.Errorf("the configured engine has no local index")
			}

			return indexPages(ctx, idx, c.Args().First())
		},
	}
}

// indexPages walks dir and feeds every page file into the index.
//
// A page file is anything ending in .wiki or .txt; its title is the file
// name with underscores turned back into spaces. Pages directly in dir
// land in the main namespace, pages in a subdirectory named after a
// namespace land in that namespace with the usual title prefix.
func indexPages(ctx context.Context, idx engines.Indexer, dir string) error {
	count := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".wiki" && ext != ".txt" {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		title, ns, ok := pageTitle(rel)
		if !ok {
			log.Printf("skipping %s: unknown namespace directory", rel)
			return nil
		}

		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if err := idx.UpdatePage(ctx, title, ns, string(text)); err != nil {
			return err
		}

		count++
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("indexed %d pages", count)
	return nil
}

// pageTitle derives a page title and namespace from a relative file
// path.
func pageTitle(rel string) (title string, ns int, ok bool) {
	rel = filepath.ToSlash(rel)
	nsName := ""

	if i := strings.IndexByte(rel, '/'); i >= 0 {
		nsName, rel = rel[:i], rel[i+1:]
		// Nested directories have no namespace meaning.
		rel = strings.ReplaceAll(rel, "/", " ")
	}

	ns, ok = namespacesByName[nsName]
	if !ok {
		return "", 0, false
	}

	title = strings.TrimSuffix(rel, filepath.Ext(rel))
	title = strings.ReplaceAll(title, "_", " ")
	if nsName != "" {
		title = nsName + ":" + title
	}

	return title, ns, true
}

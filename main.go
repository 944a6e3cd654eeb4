// Command spf previews and serves the {{#search:...}} parser function
// outside of a full wiki installation.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search"
	_ "github.com/wikimedia/mediawiki-extensions-SearchParserFunction/search/engines"
	"github.com/wikimedia/mediawiki-extensions-SearchParserFunction/searchfn"
)

func main() {
	app := &cli.Command{
		Name:  "spf",
		Usage: "Preview, serve and index for the {{#search:}} parser function",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: "config.yaml",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			renderCommand(),
			searchCommand(),
			indexCommand(),
			versionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup loads the configuration file if it exists.
// A missing default config file is fine; a missing explicit one is not.
func setup(c *cli.Command) error {
	path := c.String("config")

	if _, err := os.Stat(path); err != nil {
		if c.IsSet("config") {
			return fmt.Errorf("failed to load config file: %w", err)
		}
		return nil
	}

	if err := loadConfig(path); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

// newParserFunction initializes the configured directive engine and
// wraps it in a parser function.
func newParserFunction() (*searchfn.ParserFunction, search.Engine, error) {
	name, err := directiveEngine()
	if err != nil {
		return nil, nil, err
	}

	eng, err := initializeEngine(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize engine %q: %v", name, err)
	}

	return searchfn.New(instrument(name, eng)), eng, nil
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Expand {{#search:}} directives in a wikitext file and print the result",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "page",
				Usage: "Title of the page being rendered",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := setup(c); err != nil {
				return err
			}

			pf, _, err := newParserFunction()
			if err != nil {
				return err
			}

			var text []byte
			if c.Args().Len() > 0 {
				text, err = os.ReadFile(c.Args().First())
			} else {
				text, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}

			page := c.String("page")
			if page == "" {
				page = cfg.Page
			}

			fmt.Println(pf.ReplaceDirectives(ctx, page, cfg.Lang, string(text)))
			return nil
		},
	}
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run one query against the configured engine and print the hits",
		ArgsUsage: "query",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 10,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := setup(c); err != nil {
				return err
			}
			if c.Args().Len() == 0 {
				return fmt.Errorf("no query given")
			}

			_, eng, err := newParserFunction()
			if err != nil {
				return err
			}

			set, err := eng.Search(ctx, search.Query{
				Text:  c.Args().First(),
				Limit: int(c.Int("limit")),
			})
			if err != nil {
				return err
			}

			for _, hit := range set.Hits {
				fmt.Printf("%s\n", hit.Title)
				if hit.Snippet != "" {
					fmt.Printf("    %s\n", hit.Snippet)
				}
			}
			fmt.Printf("%d hits total\n", set.Total)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the preview web interface",
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := setup(c); err != nil {
				return err
			}

			pf, _, err := newParserFunction()
			if err != nil {
				return err
			}

			for _, v := range enabledEngines() {
				log.Printf("initializing engine %q", v)

				eng, err := initializeEngine(v)
				if err != nil {
					return err
				}
				activeEngines[v] = eng
			}

			go pinger(ctx)

			return serveHTTP(ctx, pf)
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print the version",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Println(Version)
			return nil
		},
	}
}

// enablecheck inspects the toggleable sections of configuration documents.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"
	"github.com/influxdata/wlog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/confkit/enable"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "enablecheck",
		Usage:     "inspect the toggleable sections of configuration documents",
		UsageText: "enablecheck [command]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			log.SetFlags(0)
			log.SetOutput(wlog.NewWriter(os.Stderr))
			if c.Bool("debug") {
				wlog.SetLevel(wlog.DEBUG)
			}
			return nil
		},
		Commands: []*cli.Command{
			newSectionsCmd(),
			newLintCmd(),
		},
	}
}

func newSectionsCmd() *cli.Command {
	return &cli.Command{
		Name:      "sections",
		Usage:     "report the enable state of each toggleable section in a document",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected exactly one file argument")
			}
			path := c.Args().First()
			doc, err := loadDocument(path)
			if err != nil {
				return err
			}
			for _, name := range sortedKeys(doc) {
				section, ok := doc[name].(map[string]interface{})
				if !ok {
					log.Printf("D! %s is not a table, skipping", name)
					continue
				}
				on, err := enable.StateOf(section)
				if errors.Cause(err) == enable.ErrEnableMissing {
					log.Printf("D! section %s is not toggleable, skipping", name)
					continue
				}
				if err != nil {
					return errors.Wrapf(err, "section %s", name)
				}
				state := "disabled"
				if on {
					state = "enabled"
				}
				fmt.Fprintf(c.App.Writer, "%s\t%s\n", name, state)
			}
			return nil
		},
	}
}

func newLintCmd() *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "check that every toggleable section carries a valid enable field",
		ArgsUsage: "<file...>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return errors.New("expected at least one file argument")
			}
			invalid := 0
			for _, path := range c.Args().Slice() {
				doc, err := loadDocument(path)
				if err != nil {
					return err
				}
				for _, name := range sortedKeys(doc) {
					section, ok := doc[name].(map[string]interface{})
					if !ok {
						continue
					}
					_, err := enable.StateOf(section)
					switch {
					case errors.Cause(err) == enable.ErrEnableMissing:
						log.Printf("D! %s: section %s is not toggleable", path, name)
					case err != nil:
						log.Printf("E! %s: section %s: %v", path, name, err)
						invalid++
					}
				}
			}
			if invalid > 0 {
				return fmt.Errorf("found %d invalid sections", invalid)
			}
			return nil
		},
	}
}

func loadDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := map[string]interface{}{}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".json":
		err = json.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported file extension %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	log.Printf("D! parsed %s with %d top level keys", path, len(doc))
	return doc, nil
}

func sortedKeys(doc map[string]interface{}) []string {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

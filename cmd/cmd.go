package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/diffy-scm/diffy-go/internal/buildinfo"
	"github.com/diffy-scm/diffy-go/internal/layout/persist"
	"github.com/diffy-scm/diffy-go/internal/workspace"
)

func Run() error {
	return run(os.Args[1:], os.Stdout)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("diffy-layout", flag.ContinueOnError)
	stateDir := fs.String("state-dir", "", "layout record directory (default: XDG state dir)")
	list := fs.Bool("list", false, "list workspaces with a stored layout record")
	reset := fs.Bool("reset", false, "remove every stored layout record")
	show := fs.String("show", "", "print the stored layout record for a repository path")
	verbose := fs.Bool("verbose", false, "enable verbose logging")
	showVersion := fs.Bool("version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *showVersion {
		fmt.Fprintln(out, buildinfo.VersionWithTags())
		return nil
	}

	store, err := persist.NewStore(*stateDir)
	if err != nil {
		return err
	}

	switch {
	case *reset:
		if err := store.Reset(); err != nil {
			return fmt.Errorf("reset layout records: %w", err)
		}
		fmt.Fprintln(out, "layout records cleared")
		return nil
	case *show != "":
		id := workspace.Identity(*show)
		tree := store.Load(id)
		if tree == nil {
			return fmt.Errorf("no layout record for %s", id)
		}
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("encode layout record: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	case *list:
		fallthrough
	default:
		ids, err := store.List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "no stored layout records")
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(out, id)
		}
		return nil
	}
}

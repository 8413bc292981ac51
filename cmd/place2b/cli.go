package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	goflags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/eringen/place2b"
	"github.com/eringen/place2b/fallback"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Serve   *ServeCommand
	Events  *EventsCommand
	Posts   *PostsCommand
	Check   *CheckCommand
	Init    *InitCommand
	Version *VersionCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
// Command output goes to out.
func buildParser(version string, out io.Writer) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "place2b"
	parser.LongDescription = "The Place 2B: an events and blog site backed by Sanity, with bundled fallback content."

	cmds := &commands{
		Serve:   &ServeCommand{globals: &globals, out: out},
		Events:  &EventsCommand{globals: &globals, out: out},
		Posts:   &PostsCommand{globals: &globals, out: out},
		Check:   &CheckCommand{globals: &globals, out: out},
		Init:    &InitCommand{out: out},
		Version: &VersionCommand{version: version, out: out},
	}

	parser.AddCommand("serve", "Start the web server", "Start the web server and serve until interrupted.", cmds.Serve)
	parser.AddCommand("events", "List events", "Fetch the event listing (CMS or fallback) and print the filtered result.", cmds.Events)
	parser.AddCommand("posts", "List blog posts", "Fetch the blog post listing (CMS or fallback) and print it.", cmds.Posts)
	parser.AddCommand("check", "Check the content configuration", "Report whether the CMS and image CDN are configured and run one probe query.", cmds.Check)
	parser.AddCommand("init", "Create a starter site directory", "Write a config file, an example .env and an editable copy of the fallback content.", cmds.Init)
	parser.AddCommand("version", "Print the version", "Print the version.", cmds.Version)

	return parser, &globals, cmds
}

// RunWithArgs parses args and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	return run(version, args, os.Stdout)
}

func run(version string, args []string, out io.Writer) error {
	// go-flags requires a subcommand, but --version is valid without one.
	for _, arg := range args {
		if arg == "--version" {
			fmt.Fprintf(out, "place2b %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version, out)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			return nil
		}
		return err
	}
	return nil
}

// loadConfig reads the env file, then the config file, then applies the
// environment on top.
func loadConfig(g *GlobalFlags) (place2b.SiteConfig, error) {
	if g.EnvFile != "" {
		if err := godotenv.Load(g.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return place2b.SiteConfig{}, fmt.Errorf("load %s: %w", g.EnvFile, err)
		}
	}
	var cfg place2b.SiteConfig
	if g.Config != "" {
		var err error
		if cfg, err = place2b.LoadConfigFile(g.Config); err != nil {
			return place2b.SiteConfig{}, err
		}
	}
	if err := place2b.ApplyEnv(&cfg); err != nil {
		return place2b.SiteConfig{}, err
	}
	return cfg, nil
}

// fallbackFor returns the fallback dataset a site config selects.
func fallbackFor(cfg place2b.SiteConfig) (*fallback.Dataset, error) {
	if cfg.FallbackDir == "" {
		return fallback.Default(), nil
	}
	return fallback.Load(os.DirFS(cfg.FallbackDir))
}

func cliLogger(debug bool) *slog.Logger {
	return slog.New(place2b.NewLogHandler(debug, os.Stderr))
}

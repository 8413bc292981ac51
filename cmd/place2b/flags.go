package main

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" short:"c" description:"Path to a TOML config file"`
	EnvFile string `long:"env-file" description:"Environment file loaded before the config" default:".env"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// ServeCommand starts the web server.
type ServeCommand struct {
	Addr  string `long:"addr" description:"Override the listen address"`
	Debug bool   `long:"debug" description:"Verbose, source-annotated logging"`

	globals *GlobalFlags
	out     io.Writer
}

// EventsCommand prints the filtered event listing.
type EventsCommand struct {
	Search string `long:"search" short:"s" description:"Match title, location or description"`
	Type   string `long:"type" short:"t" description:"Event type, e.g. Conference"`
	Tag    string `long:"tag" description:"Only events carrying this tag"`
	JSON   bool   `long:"json" description:"Output in JSON format"`

	globals *GlobalFlags
	out     io.Writer
}

// PostsCommand prints the blog post listing.
type PostsCommand struct {
	Featured bool `long:"featured" description:"Only the featured posts shown on the home page"`
	JSON     bool `long:"json" description:"Output in JSON format"`

	globals *GlobalFlags
	out     io.Writer
}

// CheckCommand reports the content configuration and probes the CMS.
type CheckCommand struct {
	globals *GlobalFlags
	out     io.Writer
}

// InitCommand writes a starter site directory.
type InitCommand struct {
	Name    string `long:"name" description:"Site name"`
	URL     string `long:"url" description:"Canonical site URL"`
	Project string `long:"project" description:"Sanity project ID"`
	Dataset string `long:"dataset" description:"Sanity dataset" default:"production"`
	Args    struct {
		Dir string `positional-arg-name:"dir" description:"Directory to create"`
	} `positional-args:"yes" required:"yes"`

	out io.Writer
}

// VersionCommand prints the build version.
type VersionCommand struct {
	version string
	out     io.Writer
}

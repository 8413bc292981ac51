package main

import (
	"fmt"

	"github.com/eringen/place2b/scaffold"
)

// Execute implements the go-flags Commander interface for InitCommand.
func (c *InitCommand) Execute(args []string) error {
	dir := c.Args.Dir
	fmt.Fprintf(c.out, "Creating new place2b site: %s\n\n", dir)
	err := scaffold.Write(dir, scaffold.Data{
		SiteName:  c.Name,
		SiteURL:   c.URL,
		ProjectID: c.Project,
		Dataset:   c.Dataset,
	}, c.out)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Done! Next steps:")
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  cd %s\n", dir)
	fmt.Fprintln(c.out, "  place2b serve --config place2b.toml")
	return nil
}

// Execute implements the go-flags Commander interface for VersionCommand.
func (c *VersionCommand) Execute(args []string) error {
	_, err := fmt.Fprintf(c.out, "place2b %s\n", c.version)
	return err
}

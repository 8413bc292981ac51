package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eringen/place2b/asset"
	"github.com/eringen/place2b/content"
)

// ErrCheckFailed is returned when the probe query fails.
var ErrCheckFailed = errors.New("content check failed")

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Execute implements the go-flags Commander interface for CheckCommand.
func (c *CheckCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	fb, err := fallbackFor(cfg)
	if err != nil {
		return fmt.Errorf("fallback content: %w", err)
	}
	client := content.ClientFromConfig(cfg.Sanity, &http.Client{Timeout: fetchTimeout})
	images := asset.NewResolver(cfg.Sanity.ProjectID, cfg.Sanity.Dataset)

	fmt.Fprintln(c.out, "place2b content check")
	fmt.Fprintln(c.out, "=====================")
	fmt.Fprintf(c.out, "Project:       %s\n", orDash(cfg.Sanity.ProjectID))
	fmt.Fprintf(c.out, "Dataset:       %s\n", orDash(cfg.Sanity.Dataset))
	fmt.Fprintf(c.out, "CMS:           %s\n", yesNo(client.Configured()))
	fmt.Fprintf(c.out, "Image CDN:     %s\n", yesNo(images.Configured()))
	fmt.Fprintf(c.out, "Fallback:      %d events, %d posts\n", len(fb.Events()), len(fb.Posts()))

	if !client.Configured() {
		fmt.Fprintln(c.out, "Probe:         skipped (fallback content will be served)")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()
	start := time.Now()
	var events []content.Event
	if err := client.Do(ctx, content.EventsList{}, &events); err != nil {
		fmt.Fprintf(c.out, "Probe:         failed: %v\n", err)
		return ErrCheckFailed
	}
	fmt.Fprintf(c.out, "Probe:         ok, %d events in %s\n", len(events), time.Since(start).Round(time.Millisecond))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Package scaffold writes a starter site directory: a config file, an
// example .env and an editable copy of the fallback content.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/eringen/place2b/fallback"
)

// Templates contains the scaffold template files. Files use text/template
// syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

// Data holds the variables passed to every template.
type Data struct {
	SiteName  string
	SiteURL   string
	ProjectID string
	Dataset   string
}

// contentDir receives the fallback JSON files. The generated config points
// fallback_dir at it.
const contentDir = "content"

// Write creates dir and fills it. It refuses to touch an existing
// directory. Each created path is reported to log.
func Write(dir string, data Data, log io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	if data.SiteName == "" {
		data.SiteName = "The Place 2B"
	}
	if data.SiteURL == "" {
		data.SiteURL = "http://localhost:3000"
	}
	if data.Dataset == "" {
		data.Dataset = "production"
	}

	if err := writeTemplates(dir, data, log); err != nil {
		return err
	}
	return copyFS(fallback.Files(), filepath.Join(dir, contentDir), log)
}

func writeTemplates(dir string, data Data, log io.Writer) error {
	const root = "templates"
	return fs.WalkDir(Templates, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		outPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")
		if filepath.Base(outPath) == "dotenv" {
			outPath = filepath.Join(filepath.Dir(outPath), ".env.example")
		}
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		src, err := Templates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tmpl, err := template.New(filepath.Base(path)).Option("missingkey=error").Parse(string(src))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		defer f.Close()
		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("execute template %s: %w", path, err)
		}
		fmt.Fprintf(log, "  created %s\n", outPath)
		return nil
	})
}

func copyFS(src fs.FS, dst string, log io.Writer) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	return fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(src, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		outPath := filepath.Join(dst, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, b, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(log, "  created %s\n", outPath)
		return nil
	})
}

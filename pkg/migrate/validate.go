package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var migrationNameRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	annotationUp    = "-- +goose Up"
	annotationDown  = "-- +goose Down"
	annotationBegin = "-- +goose StatementBegin"
	annotationEnd   = "-- +goose StatementEnd"
)

// ValidateDir runs ValidateFS against a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded checks the migration set compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(Embedded(), "migrations")
}

// ValidateFS checks every .sql file under dir: versioned filename, one file
// per version, both goose sections present with Up before Down, and balanced
// statement blocks.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read migrations %q: %w", dir, err)
	}

	versions := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".sql" {
			continue
		}
		file := entry.Name()
		match := migrationNameRe.FindStringSubmatch(file)
		if match == nil {
			return fmt.Errorf("migration %q: name must look like YYYYMMDDHHMMSS_name.sql", file)
		}
		if other, dup := versions[match[1]]; dup {
			return fmt.Errorf("migration version %s used by both %q and %q", match[1], other, file)
		}
		versions[match[1]] = file

		body, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return fmt.Errorf("read migration %q: %w", file, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", file, err)
		}
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations in %q", dir)
	}
	return nil
}

func checkAnnotations(body string) error {
	up := strings.Index(body, annotationUp)
	down := strings.Index(body, annotationDown)
	switch {
	case up < 0:
		return fmt.Errorf("missing %q", annotationUp)
	case down < 0:
		return fmt.Errorf("missing %q", annotationDown)
	case down < up:
		return errors.New("down section precedes up section")
	}

	open := false
	for _, line := range strings.Split(body, "\n") {
		switch strings.TrimSpace(line) {
		case annotationBegin:
			if open {
				return errors.New("nested StatementBegin")
			}
			open = true
		case annotationEnd:
			if !open {
				return errors.New("StatementEnd without StatementBegin")
			}
			open = false
		}
	}
	if open {
		return errors.New("unterminated StatementBegin")
	}
	return nil
}

// Package gamefs finds game files in an ordered list of directories.
package gamefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type ResourceNotFoundError struct {
	Name        string
	SearchPaths []string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found in [%s]", e.Name, strings.Join(e.SearchPaths, ", "))
}

// SearchPaths are tried in order, the first directory holding a file wins.
type SearchPaths []string

func (p SearchPaths) Find(name string) (string, error) {
	for _, dir := range p {
		path := filepath.Join(dir, filepath.FromSlash(name))
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.WithStack(&ResourceNotFoundError{Name: name, SearchPaths: p})
}

func (p SearchPaths) Open(name string) (*os.File, error) {
	path, err := p.Find(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

func IsNotFound(err error) bool {
	var notFound *ResourceNotFoundError
	return errors.As(err, &notFound)
}

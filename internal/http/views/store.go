// Package views renders page templates. Every page template is parsed
// together with layout.html.
package views

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"
)

//go:embed templates
var embedded embed.FS

const layoutName = "layout.html"

var ErrNoTemplate = errors.New("no template found")

type Store struct {
	fsys  fs.FS
	funcs template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewStore reads templates from dir, or the embedded set when dir is
// empty.
func NewStore(dir string) (*Store, error) {
	var fsys fs.FS
	if strings.TrimSpace(dir) != "" {
		fsys = os.DirFS(dir)
	} else {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		fsys = sub
	}
	if _, err := fs.Stat(fsys, layoutName); err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}
	return &Store{
		fsys:  fsys,
		cache: map[string]*template.Template{},
		funcs: template.FuncMap{
			"join": strings.Join,
		},
	}, nil
}

// Render executes the first candidate that exists and returns its name
// with the output.
func (s *Store) Render(candidates []string, data map[string]any) ([]byte, string, error) {
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if _, err := fs.Stat(s.fsys, name); err != nil {
			continue
		}
		tmpl, err := s.load(name)
		if err != nil {
			return nil, name, err
		}
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, path.Base(name), data); err != nil {
			return nil, name, fmt.Errorf("execute %s: %w", name, err)
		}
		return buf.Bytes(), name, nil
	}
	return nil, "", fmt.Errorf("%w: tried %s", ErrNoTemplate, strings.Join(candidates, ", "))
}

func (s *Store) load(name string) (*template.Template, error) {
	s.mu.RLock()
	t, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return t, nil
	}
	t, err := template.New(path.Base(name)).Funcs(s.funcs).ParseFS(s.fsys, layoutName, name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	s.mu.Lock()
	s.cache[name] = t
	s.mu.Unlock()
	return t, nil
}

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mdslides/internal/markdown"
)

// titleFile overrides the deck title when a directory is presented.
const titleFile = "_title.md"

// source is the markdown to present and an optional title override.
type source struct {
	text  string
	title string
}

// loadSource reads a markdown file, or a directory of them. In a directory
// every .md file not starting with an underscore is one or more slides, in
// file name order.
func loadSource(path string) (source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return source{}, fmt.Errorf("load slides: %w", err)
	}
	if !fi.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return source{}, fmt.Errorf("load slides: %w", err)
		}
		log.Printf("load: %s (%d bytes)", path, len(data))
		return source{text: string(data)}, nil
	}
	return loadDir(path)
}

func loadDir(dir string) (source, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return source{}, fmt.Errorf("load slides: %w", err)
	}

	var src source
	if data, err := os.ReadFile(filepath.Join(dir, titleFile)); err == nil {
		src.title = strings.TrimSpace(string(data))
	}

	var names []string
	for _, f := range files {
		if !f.IsDir() && filepath.Ext(f.Name()) == ".md" && !strings.HasPrefix(f.Name(), "_") {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return source{}, fmt.Errorf("load slides: %w", err)
		}
		parts = append(parts, strings.TrimRight(string(data), "\r\n"))
	}
	log.Printf("load: %s (%d files)", dir, len(names))
	src.text = strings.Join(parts, "\n"+markdown.Separator+"\n")
	return src, nil
}

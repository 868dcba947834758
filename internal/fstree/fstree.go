// Package fstree renders a directory as the nested item list the project
// folder browser expects.
package fstree

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"
)

// FirstID is the id given to the first entry; 1 is reserved for the root.
const FirstID = 2

// ErrNotDirectory is returned when the root exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Node is one file or folder.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsFolder bool   `json:"isFolder"`
	Items    []Node `json:"items"`
}

// GenerateDir lists the directory at dir on the local filesystem.
func GenerateDir(dir string) ([]Node, error) {
	return Generate(os.DirFS(dir), ".")
}

// Generate walks root inside fsys. Entries are in name order and ids are
// assigned in pre-order, so every id in the tree is unique.
func Generate(fsys fs.FS, root string) ([]Node, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDirectory)
	}

	next := FirstID
	return walk(fsys, root, &next)
}

func walk(fsys fs.FS, dir string, next *int) ([]Node, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	nodes := make([]Node, 0, len(entries))
	for _, entry := range entries {
		node := Node{
			ID:       strconv.Itoa(*next),
			Name:     entry.Name(),
			IsFolder: entry.IsDir(),
			Items:    []Node{},
		}
		*next++

		if entry.IsDir() {
			node.Items, err = walk(fsys, path.Join(dir, entry.Name()), next)
			if err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

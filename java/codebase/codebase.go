// Package codebase tracks the Java documents of a workspace and answers
// postfix completion requests against them.
package codebase

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/java/syntax"
	"github.com/dhamidi/postfix/postfix"
)

var log = commonlog.GetLogger("postfix.codebase")

// DummyIdentifier is inserted at the cursor before parsing so that a
// keyword typed after the dot, as in x.if, still reads as a name.
const DummyIdentifier = "PostfixDummyIdent"

var (
	ErrUnknownFile     = errors.New("file not loaded")
	ErrInvalidPosition = errors.New("position outside of file")
)

type Codebase struct {
	mu      sync.RWMutex
	rootDir string
	files   map[string]*FileInfo
	manager *postfix.Manager
}

type FileInfo struct {
	Path    string
	Content []byte
	Tree    *syntax.Tree
}

func New(rootDir string, manager *postfix.Manager) *Codebase {
	if manager == nil {
		manager = postfix.NewManager()
	}
	return &Codebase{
		rootDir: rootDir,
		files:   make(map[string]*FileInfo),
		manager: manager,
	}
}

func (c *Codebase) RootDir() string {
	return c.rootDir
}

func (c *Codebase) Manager() *postfix.Manager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.manager
}

// SetManager replaces the template manager used by later requests.
func (c *Codebase) SetManager(m *postfix.Manager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manager = m
}

func (c *Codebase) ScanFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

func (c *Codebase) UpdateFile(path string, content []byte) {
	tree := syntax.Parse(content, parser.WithFile(filepath.Base(path)))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[path] = &FileInfo{
		Path:    path,
		Content: content,
		Tree:    tree,
	}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.files, path)
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// PostfixAt lists the postfix templates available at line:column of a
// loaded file. Lines and columns are 1-based; columns count bytes.
func (c *Codebase) PostfixAt(path string, line, column int, force bool) ([]postfix.Proposal, error) {
	f := c.GetFile(path)
	if f == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFile)
	}
	return Complete(c.Manager(), f.Content, Request{
		File:   filepath.Base(path),
		Line:   line,
		Column: column,
		Force:  force,
	})
}

// ParseFunc parses a whole document.
type ParseFunc func(src []byte, opts ...parser.Option) *syntax.Tree

// Request locates a completion inside a document.
type Request struct {
	File   string
	Line   int
	Column int
	Force  bool
	// Parse defaults to syntax.Parse.
	Parse ParseFunc
}

// Complete runs m over src at the requested position. The source is
// reparsed with DummyIdentifier inserted at the cursor, followed by a
// semicolon when nothing else follows on the line. Replace ranges never
// extend past the cursor.
func Complete(m *postfix.Manager, src []byte, req Request) ([]postfix.Proposal, error) {
	offset, ok := Offset(src, req.Line, req.Column)
	if !ok {
		return nil, fmt.Errorf("%d:%d: %w", req.Line, req.Column, ErrInvalidPosition)
	}
	parse := req.Parse
	if parse == nil {
		parse = syntax.Parse
	}

	patched := make([]byte, 0, len(src)+len(DummyIdentifier)+1)
	patched = append(patched, src[:offset]...)
	patched = append(patched, DummyIdentifier...)
	if restOfLineBlank(src[offset:]) {
		patched = append(patched, ';')
	}
	patched = append(patched, src[offset:]...)

	tree := parse(patched, parser.WithFile(req.File))
	leaf := tree.LeafAt(offset + len(DummyIdentifier))
	proposals := m.AvailableTemplates(tree, leaf, req.Force)
	log.Debugf("%s:%d:%d: %d proposals", req.File, req.Line, req.Column, len(proposals))

	cursor := parser.Position{File: req.File, Offset: offset, Line: req.Line, Column: req.Column}
	for i := range proposals {
		if proposals[i].Replace.End.Offset > offset {
			proposals[i].Replace.End = cursor
		}
	}
	return proposals, nil
}

// Offset converts a 1-based line and byte column into a byte offset. The
// column may point one past the last character of the line.
func Offset(src []byte, line, column int) (int, bool) {
	if line < 1 || column < 1 {
		return 0, false
	}
	start := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(src[start:], '\n')
		if i < 0 {
			return 0, false
		}
		start += i + 1
	}
	end := len(src)
	if i := bytes.IndexByte(src[start:], '\n'); i >= 0 {
		end = start + i
	}
	offset := start + column - 1
	if offset > end {
		return 0, false
	}
	return offset, true
}

func restOfLineBlank(rest []byte) bool {
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return len(bytes.TrimSpace(rest)) == 0
}

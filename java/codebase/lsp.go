package codebase

import (
	"bytes"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/postfix/java/parser"
	"github.com/dhamidi/postfix/postfix"
	"github.com/dhamidi/postfix/postfix/snippet"
)

const lsName = "postfix"

type LSPServer struct {
	codebase  *Codebase
	handler   protocol.Handler
	server    *server.Server
	version   string
	templates string
	watcher   *ConfigWatcher
}

// NewLSPServer builds a server using the templates at templatesPath, or
// the built-in templates when templatesPath is empty.
func NewLSPServer(version, templatesPath string) *LSPServer {
	ls := &LSPServer{
		codebase:  New(".", nil),
		version:   version,
		templates: templatesPath,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.loadManager())

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// loadManager builds the manager for the configured templates, falling back
// to the built-in templates when the file cannot be loaded.
func (ls *LSPServer) loadManager() *postfix.Manager {
	cfg, err := snippet.LoadOrDefault(ls.templates)
	if err == nil {
		return snippet.NewManager(cfg)
	}
	log.Errorf("using built-in templates: %v", err)
	if cfg, err = snippet.Default(); err != nil {
		log.Errorf("no templates: %v", err)
		return postfix.NewManager()
	}
	return snippet.NewManager(cfg)
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if ls.templates != "" {
		ls.watcher = NewConfigWatcher(ls.codebase, ls.templates)
		ls.watcher.Start()
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.RemoveFile(path)
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if err := ls.codebase.ScanFile(path); err != nil {
		log.Errorf("rescanning %s: %v", path, err)
	}
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}

	force := params.Context != nil && params.Context.TriggerKind == protocol.CompletionTriggerKindInvoked
	line := int(params.Position.Line) + 1
	column := byteColumn(file.Content, line, int(params.Position.Character))

	proposals, err := ls.codebase.PostfixAt(path, line, column, force)
	if err != nil {
		log.Debugf("completion at %s:%d:%d: %v", path, line, column, err)
		return nil, nil
	}
	if len(proposals) == 0 {
		return nil, nil
	}
	return completionItems(file.Content, proposals), nil
}

// completionItems turns proposals into snippet edits. Each item filters on
// the replaced text up to the dot followed by the template name, so the
// client keeps it while the user types the name.
func completionItems(content []byte, proposals []postfix.Proposal) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(proposals))
	for i, p := range proposals {
		kind := protocol.CompletionItemKindSnippet
		format := protocol.InsertTextFormatSnippet
		detail := p.Detail
		sortText := sortKey(i)

		replaced := string(content[p.Replace.Start.Offset:p.Replace.End.Offset])
		filterText := replaced[:strings.LastIndexByte(replaced, '.')+1] + p.Label

		item := protocol.CompletionItem{
			Label:            p.Label,
			Kind:             &kind,
			Detail:           &detail,
			SortText:         &sortText,
			FilterText:       &filterText,
			InsertTextFormat: &format,
			TextEdit: protocol.TextEdit{
				Range: protocol.Range{
					Start: protocolPosition(content, p.Replace.Start),
					End:   protocolPosition(content, p.Replace.End),
				},
				NewText: p.Snippet,
			},
		}
		if p.Documentation != "" {
			item.Documentation = p.Documentation
		}
		items = append(items, item)
	}
	return items
}

// sortKey keeps the manager's order in clients that sort by label.
func sortKey(i int) string {
	return fmt.Sprintf("%04d", i)
}

// byteColumn converts a UTF-16 character offset on a 1-based line into a
// 1-based byte column.
func byteColumn(content []byte, line, character int) int {
	text := lineText(content, line)
	units, i := 0, 0
	for i < len(text) && units < character {
		r, size := utf8.DecodeRune(text[i:])
		units += utf16.RuneLen(r)
		i += size
	}
	return i + 1 + max(character-units, 0)
}

// protocolPosition converts a parser position into a 0-based LSP position
// counting UTF-16 units.
func protocolPosition(content []byte, pos parser.Position) protocol.Position {
	text := lineText(content, pos.Line)
	units := 0
	for i := 0; i < pos.Column-1 && i < len(text); {
		r, size := utf8.DecodeRune(text[i:])
		units += utf16.RuneLen(r)
		i += size
	}
	return protocol.Position{
		Line:      protocol.UInteger(pos.Line - 1),
		Character: protocol.UInteger(units),
	}
}

func lineText(content []byte, line int) []byte {
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(content, '\n')
		if i < 0 {
			return nil
		}
		content = content[i+1:]
	}
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	return content
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

// Package workspace answers module questions for the language server: which
// module a URI is, where its source lives, what a require resolves to and
// which configuration governs it.
package workspace

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/Barocena/luau-lsp/internal/document"
	"github.com/Barocena/luau-lsp/internal/luauconfig"
	"github.com/Barocena/luau-lsp/internal/navigation"
	"github.com/Barocena/luau-lsp/internal/platform"

	"github.com/spf13/afero"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.lsp.dev/uri"
)

var log = commonlog.GetLogger("luau-lsp.workspace")

// schemePrefix matches URI schemes such as `untitled:`. Single letters are
// drive names, not schemes.
var schemePrefix = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]+:`)

// DocumentLookup finds documents the editor currently has open.
type DocumentLookup interface {
	Get(uri protocol.DocumentUri) (*document.TextDocument, bool)
}

// DiagnosticsClient receives diagnostics about configuration files.
type DiagnosticsClient interface {
	PublishDiagnostics(params protocol.PublishDiagnosticsParams)
}

// NotifyClient adapts a glsp notification function to DiagnosticsClient.
type NotifyClient glsp.NotifyFunc

func (n NotifyClient) PublishDiagnostics(params protocol.PublishDiagnosticsParams) {
	n(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// SourceCode is the text of a module and the kind of script it is.
type SourceCode struct {
	Source string
	Kind   platform.SourceKind
}

// Options configures a FileResolver. Fs and Platform default to the OS
// filesystem and the standard platform on it.
type Options struct {
	Fs            afero.Fs
	Platform      platform.Platform
	Documents     DocumentLookup
	Client        DiagnosticsClient
	Root          string
	DefaultConfig *luauconfig.Config
}

// FileResolver is the workspace view over a platform.
type FileResolver struct {
	fs        afero.Fs
	platform  platform.Platform
	documents DocumentLookup
	client    DiagnosticsClient
	root      string

	defaultConfig luauconfig.Config
	configs       *ConfigCache
	configMu      sync.Mutex
}

// NewFileResolver builds a resolver and, when the platform expands aliases,
// hands it the resolver's config cascade.
func NewFileResolver(opts Options) *FileResolver {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	p := opts.Platform
	if p == nil {
		p = platform.NewStandard(fs)
	}
	defaults := luauconfig.Default()
	if opts.DefaultConfig != nil {
		defaults = opts.DefaultConfig.Clone()
	}

	r := &FileResolver{
		fs:            fs,
		platform:      p,
		documents:     opts.Documents,
		client:        opts.Client,
		defaultConfig: defaults,
		configs:       NewConfigCache(),
	}
	if opts.Root != "" {
		r.root = navigation.NormalizePath(opts.Root)
	}
	if aware, ok := p.(interface {
		SetConfigProvider(platform.ConfigProvider)
	}); ok {
		aware.SetConfigProvider(r)
	}
	return r
}

func (r *FileResolver) Platform() platform.Platform {
	return r.platform
}

func (r *FileResolver) Root() string {
	return r.root
}

// SetClient replaces the diagnostics sink. Passing nil routes diagnostics to
// the log.
func (r *FileResolver) SetClient(client DiagnosticsClient) {
	r.configMu.Lock()
	defer r.configMu.Unlock()
	r.client = client
}

// ModuleName maps a document URI to a module name. Non-file URIs are their
// own module name.
func (r *FileResolver) ModuleName(u protocol.DocumentUri) string {
	fsPath, ok := FilePath(u)
	if !ok {
		return string(u)
	}
	if virtual, ok := r.platform.ResolveToVirtualPath(fsPath); ok {
		return virtual
	}
	return fsPath
}

// URI maps a module name back to a document URI. Virtual names go through
// their backing file; any other name is taken to be a real path, except
// the names ModuleName passed through for non-file URIs.
func (r *FileResolver) URI(name string) protocol.DocumentUri {
	if r.platform.IsVirtualPath(name) {
		if realPath, ok := r.platform.ResolveToRealPath(name); ok {
			return FileURI(realPath)
		}
	}
	if schemePrefix.MatchString(name) {
		return protocol.DocumentUri(name)
	}
	return FileURI(name)
}

// RealPath returns the file backing module name.
func (r *FileResolver) RealPath(name string) (string, bool) {
	return r.platform.ResolveToRealPath(name)
}

// TextDocument returns the managed document for u, if the editor has it open.
func (r *FileResolver) TextDocument(u protocol.DocumentUri) (*document.TextDocument, bool) {
	if r.documents == nil {
		return nil, false
	}
	return r.documents.Get(u)
}

func (r *FileResolver) TextDocumentFromModuleName(name string) (*document.TextDocument, bool) {
	return r.TextDocument(r.URI(name))
}

// GetOrCreateTextDocumentFromModuleName borrows the managed document when
// one is open and otherwise builds an owned snapshot from disk. The handle
// is empty when neither exists.
func (r *FileResolver) GetOrCreateTextDocumentFromModuleName(name string) document.Handle {
	if doc, ok := r.TextDocumentFromModuleName(name); ok {
		return document.Borrow(doc)
	}

	realPath, ok := r.platform.ResolveToRealPath(name)
	if !ok {
		return document.Handle{}
	}
	source, ok := r.platform.ReadSourceCode(name, realPath)
	if !ok {
		return document.Handle{}
	}
	return document.Own(document.New(FileURI(realPath), document.LanguageID, 0, source))
}

// ReadSource returns the text and kind of a module. The read itself is the
// platform's.
func (r *FileResolver) ReadSource(name string) (SourceCode, bool) {
	realPath, ok := r.platform.ResolveToRealPath(name)
	if !ok {
		return SourceCode{}, false
	}
	source, ok := r.platform.ReadSourceCode(name, realPath)
	if !ok {
		return SourceCode{}, false
	}
	return SourceCode{Source: source, Kind: r.platform.SourceCodeTypeFromPath(realPath)}, true
}

// ResolveModule delegates a require expression to the platform.
func (r *FileResolver) ResolveModule(context *platform.ModuleInfo, expr platform.Expr) (platform.ModuleInfo, bool) {
	return r.platform.ResolveModule(context, expr)
}

// HumanReadableModuleName renders a module name for messages. A virtual
// name backed by a file is shown as `<path relative to root> [<name>]`;
// anything else is returned unchanged.
func (r *FileResolver) HumanReadableModuleName(name string) string {
	if !r.platform.IsVirtualPath(name) {
		return name
	}
	realPath, ok := r.platform.ResolveToRealPath(name)
	if !ok {
		return name
	}
	return r.relative(realPath) + " [" + name + "]"
}

func (r *FileResolver) relative(p string) string {
	p = navigation.NormalizePath(p)
	if r.root != "" && r.root != "/" && strings.HasPrefix(p, r.root+"/") {
		return strings.TrimPrefix(p, r.root+"/")
	}
	return strings.TrimPrefix(p, "/")
}

// FilePath extracts the slash-separated path of a file URI.
func FilePath(u protocol.DocumentUri) (string, bool) {
	if !strings.HasPrefix(string(u), uri.FileScheme+"://") {
		return "", false
	}
	parsed, err := uri.Parse(string(u))
	if err != nil {
		log.Debugf("parsing %s: %v", u, err)
		return "", false
	}
	return navigation.NormalizePath(filepath.ToSlash(parsed.Filename())), true
}

// FileURI returns the file URI of a slash-separated path.
func FileURI(p string) protocol.DocumentUri {
	return protocol.DocumentUri(uri.File(filepath.FromSlash(path.Clean(p))))
}

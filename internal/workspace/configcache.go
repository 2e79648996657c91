package workspace

import (
	"fmt"
	"path"
	"sync"

	"github.com/Barocena/luau-lsp/internal/luauconfig"
	"github.com/Barocena/luau-lsp/internal/navigation"

	"github.com/spf13/afero"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DiagnosticSource tags every diagnostic this package publishes.
const DiagnosticSource = "Luau"

// ConfigCache holds the merged configuration of every directory queried so
// far. Entries are only ever dropped all at once, and each drop starts a new
// generation.
type ConfigCache struct {
	mu         sync.RWMutex
	entries    map[string]luauconfig.Config
	generation uint64
}

func NewConfigCache() *ConfigCache {
	return &ConfigCache{entries: make(map[string]luauconfig.Config)}
}

// Get returns the cached configuration of dir. The result shares storage
// with the cache and must not be modified.
func (c *ConfigCache) Get(dir string) (luauconfig.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cfg, ok := c.entries[dir]
	return cfg, ok
}

func (c *ConfigCache) Put(dir string, cfg luauconfig.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[dir] = cfg
}

// Generation identifies the current contents of the cache. It changes on
// every Clear.
func (c *ConfigCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// PutAt stores cfg only if the cache has not been cleared since generation
// was observed. It reports whether the entry was stored.
func (c *ConfigCache) PutAt(generation uint64, dir string, cfg luauconfig.Config) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	c.entries[dir] = cfg
	return true
}

func (c *ConfigCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *ConfigCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]luauconfig.Config)
	c.generation++
}

// Config returns the effective configuration governing module name. Init
// files are scoped to the directory containing their own directory. The
// result is a private copy the caller may modify.
func (r *FileResolver) Config(name string) luauconfig.Config {
	realPath, ok := r.platform.ResolveToRealPath(name)
	if !ok {
		return r.defaultConfig.Clone()
	}
	realPath = navigation.NormalizePath(realPath)
	if !hasParent(realPath) {
		return r.defaultConfig.Clone()
	}

	base := path.Dir(realPath)
	if navigation.IsInitFile(realPath) {
		if !hasParent(base) {
			return r.defaultConfig.Clone()
		}
		base = path.Dir(base)
	}
	return r.ConfigForDirectory(base)
}

// ConfigForDirectory returns the merged configuration of dir, computing and
// caching any ancestors that are not cached yet, outermost first. The result
// is a private copy the caller may modify.
func (r *FileResolver) ConfigForDirectory(dir string) luauconfig.Config {
	dir = navigation.NormalizePath(dir)

	r.configMu.Lock()
	var pending []protocol.PublishDiagnosticsParams
	cfg := r.readConfigChain(dir, &pending)
	client := r.client
	r.configMu.Unlock()

	publish(client, pending)
	return cfg.Clone()
}

// ClearConfigCache forgets every computed configuration. It is the only way
// entries are invalidated. A walk already in progress keeps its result but
// does not cache anything it read before the clear.
func (r *FileResolver) ClearConfigCache() {
	r.configs.Clear()
	log.Infof("config cache cleared")
}

func (r *FileResolver) readConfigChain(dir string, pending *[]protocol.PublishDiagnosticsParams) luauconfig.Config {
	generation := r.configs.Generation()
	var chain []string
	inherited := r.defaultConfig
	for p := dir; ; p = path.Dir(p) {
		if cached, ok := r.configs.Get(p); ok {
			log.Debugf("config cache hit for %s", p)
			inherited = cached
			break
		}
		chain = append(chain, p)
		if !hasParent(p) {
			break
		}
	}

	for i := len(chain) - 1; i >= 0; i-- {
		inherited = r.applyDirectoryConfig(chain[i], inherited, pending)
		if !r.configs.PutAt(generation, chain[i], inherited) {
			log.Debugf("config cache cleared while reading %s, not caching", chain[i])
		}
	}
	return inherited
}

func (r *FileResolver) applyDirectoryConfig(
	dir string,
	parent luauconfig.Config,
	pending *[]protocol.PublishDiagnosticsParams,
) luauconfig.Config {
	result := parent.Clone()
	primary := path.Join(dir, luauconfig.ConfigName)
	legacy := path.Join(dir, luauconfig.LegacyConfigName)

	switch navigation.StatusOf(r.fs, dir) {
	case navigation.ConfigAmbiguous:
		log.Warningf("%s: both %s and %s exist, using %s", dir, luauconfig.ConfigName, luauconfig.LegacyConfigName, luauconfig.ConfigName)
		*pending = append(*pending, configDiagnostics(legacy, fmt.Sprintf(
			"%s is ignored because %s exists in the same directory",
			luauconfig.LegacyConfigName, luauconfig.ConfigName,
		)))
		r.parseConfigFile(primary, dir, &result, false, pending)
	case navigation.ConfigPresentPrimary:
		r.parseConfigFile(primary, dir, &result, false, pending)
	case navigation.ConfigPresentLegacy:
		r.parseConfigFile(legacy, dir, &result, true, pending)
	}
	return result
}

func (r *FileResolver) parseConfigFile(
	file, dir string,
	result *luauconfig.Config,
	compat bool,
	pending *[]protocol.PublishDiagnosticsParams,
) {
	contents, err := afero.ReadFile(r.fs, file)
	if err != nil {
		log.Warningf("reading %s: %v", file, err)
		return
	}

	err = luauconfig.Parse(contents, result, luauconfig.Options{
		Filename:         file,
		ConfigLocation:   dir,
		OverwriteAliases: true,
		Compat:           compat,
	})
	if err != nil {
		*pending = append(*pending, configDiagnostics(file, err.Error()))
		return
	}
	*pending = append(*pending, configDiagnostics(file))
}

// configDiagnostics builds the publish call for a config file: one error at
// the start of the document per message, or an empty list to clear.
func configDiagnostics(file string, messages ...string) protocol.PublishDiagnosticsParams {
	severity := protocol.DiagnosticSeverityError
	source := DiagnosticSource
	diagnostics := make([]protocol.Diagnostic, 0, len(messages))
	for _, message := range messages {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{},
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}
	return protocol.PublishDiagnosticsParams{
		URI:         FileURI(file),
		Diagnostics: diagnostics,
	}
}

func publish(client DiagnosticsClient, pending []protocol.PublishDiagnosticsParams) {
	for _, params := range pending {
		if client != nil {
			client.PublishDiagnostics(params)
			continue
		}
		for _, d := range params.Diagnostics {
			log.Errorf("%s: %s", params.URI, d.Message)
		}
	}
}

func hasParent(p string) bool {
	return p != "" && p != "." && path.Dir(p) != p
}

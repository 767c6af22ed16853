package contextcollector

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/ports"
)

// TreeCollector implements ports.SystemCollector by snapshotting the install root.
// Snapshots are cached in the context cache under domain.SystemAnalysisKey.
type TreeCollector struct {
	cache           ports.ContextCache
	logger          ports.Logger
	servicesToCheck []string
	maxDepth        int
	skipDirs        map[string]struct{}
	now             func() time.Time
	lookPath        func(string) (string, error)
}

// NewTreeCollector builds a collector. cache and logger may be nil.
func NewTreeCollector(cache ports.ContextCache, logger ports.Logger) *TreeCollector {
	skip := make(map[string]struct{})
	for _, name := range domain.SystemScanSkipDirs() {
		skip[name] = struct{}{}
	}
	return &TreeCollector{
		cache:           cache,
		logger:          logger,
		servicesToCheck: []string{"wings", "nginx", "apache2", "php", "php-fpm", "mysql", "mariadb", "redis-server", "docker", "composer", "node", "yarn"},
		maxDepth:        domain.SystemScanDepth,
		skipDirs:        skip,
		now:             time.Now,
		lookPath:        exec.LookPath,
	}
}

// Collect returns the cached snapshot when fresh, otherwise walks the install root
// and caches the result. A cache persist failure is logged, not returned.
func (c *TreeCollector) Collect(ctx context.Context, cfg domain.Config) (domain.SystemContext, error) {
	if cached, ok := c.cached(); ok {
		return cached, nil
	}

	snapshot, err := c.scan(ctx, cfg.PteroPath)
	if err != nil {
		return domain.SystemContext{}, err
	}
	if c.cache != nil {
		if err := c.cache.Set(domain.SystemAnalysisKey, snapshot); err != nil {
			c.warn("system snapshot not persisted", err)
		}
	}
	return snapshot, nil
}

// Refresh drops the cached snapshot and collects again.
func (c *TreeCollector) Refresh(ctx context.Context, cfg domain.Config) (domain.SystemContext, error) {
	if c.cache != nil {
		if err := c.cache.Delete(domain.SystemAnalysisKey); err != nil {
			c.warn("system snapshot not evicted", err)
		}
	}
	return c.Collect(ctx, cfg)
}

func (c *TreeCollector) cached() (domain.SystemContext, bool) {
	if c.cache == nil {
		return domain.SystemContext{}, false
	}
	raw, ok := c.cache.Get(domain.SystemAnalysisKey)
	if !ok {
		return domain.SystemContext{}, false
	}
	var snapshot domain.SystemContext
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		c.warn("cached system snapshot unreadable", err)
		return domain.SystemContext{}, false
	}
	return snapshot, true
}

func (c *TreeCollector) scan(ctx context.Context, root string) (domain.SystemContext, error) {
	snapshot := domain.SystemContext{
		InstallRoot: root,
		Structure:   []domain.ContextNode{},
		Services:    c.detectServices(),
		Timestamp:   c.now(),
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return snapshot, nil
	}
	if marker, err := os.Stat(filepath.Join(root, "artisan")); err == nil && !marker.IsDir() {
		snapshot.Installed = true
	}

	nodes, err := c.listDir(ctx, root, 1)
	if err != nil {
		return domain.SystemContext{}, err
	}
	snapshot.Structure = nodes
	return snapshot, nil
}

func (c *TreeCollector) listDir(ctx context.Context, dir string, depth int) ([]domain.ContextNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		c.warn("directory skipped", err)
		return nil, nil
	}
	nodes := make([]domain.ContextNode, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			nodes = append(nodes, domain.ContextNode{Name: entry.Name(), Type: domain.NodeFile})
			continue
		}
		if _, skip := c.skipDirs[entry.Name()]; skip {
			continue
		}
		node := domain.ContextNode{Name: entry.Name(), Type: domain.NodeDirectory}
		if depth < c.maxDepth {
			children, err := c.listDir(ctx, filepath.Join(dir, entry.Name()), depth+1)
			if err != nil {
				return nil, err
			}
			node.Children = children
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func (c *TreeCollector) detectServices() []string {
	available := []string{}
	for _, name := range c.servicesToCheck {
		if _, err := c.lookPath(name); err == nil {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}

func (c *TreeCollector) warn(msg string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(msg, map[string]interface{}{"stage": "system_analysis", "error": err.Error()})
}

var _ ports.SystemCollector = (*TreeCollector)(nil)

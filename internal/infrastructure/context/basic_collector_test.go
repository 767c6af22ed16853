package contextcollector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/pteroai-go/internal/domain"
	"github.com/doeshing/pteroai-go/internal/infrastructure/cache"
	"github.com/doeshing/pteroai-go/internal/ports"
)

func buildInstall(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite := func(rel string) {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("artisan")
	mustWrite("app/Http/Controllers/ServerController.php")
	mustWrite("resources/scripts/components/server/console/Console.tsx")
	mustWrite("vendor/laravel/framework/src/Foundation.php")
	mustWrite("node_modules/react/index.js")
	return root
}

func newTestCollector(c ports.ContextCache) *TreeCollector {
	collector := NewTreeCollector(c, nil)
	collector.lookPath = func(name string) (string, error) {
		if name == "nginx" || name == "php" {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	collector.now = func() time.Time { return time.Unix(1700000000, 0) }
	return collector
}

func TestTreeCollectorSnapshotsInstallRoot(t *testing.T) {
	root := buildInstall(t)
	collector := newTestCollector(nil)

	snapshot, err := collector.Collect(context.Background(), domain.Config{PteroPath: root})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if !snapshot.Installed {
		t.Fatal("expected artisan marker to mark the install")
	}
	if got := snapshot.Services; len(got) != 2 || got[0] != "nginx" || got[1] != "php" {
		t.Fatalf("unexpected services %v", got)
	}

	seen := map[string]string{}
	snapshot.Walk(func(p string, node domain.ContextNode) bool {
		seen[p] = node.Type
		return true
	})
	if seen["app/Http/Controllers/ServerController.php"] != domain.NodeFile {
		t.Fatalf("expected controller in snapshot, got %v", seen)
	}
	if _, ok := seen["vendor"]; ok {
		t.Fatal("vendor should be skipped")
	}
	if _, ok := seen["node_modules"]; ok {
		t.Fatal("node_modules should be skipped")
	}
	// depth 4: resources/scripts/components/server is listed without children
	if seen["resources/scripts/components/server"] != domain.NodeDirectory {
		t.Fatalf("expected depth-4 directory, got %v", seen)
	}
	if _, ok := seen["resources/scripts/components/server/console"]; ok {
		t.Fatal("walk should stop at depth 4")
	}
}

func TestTreeCollectorMissingRoot(t *testing.T) {
	collector := newTestCollector(nil)
	snapshot, err := collector.Collect(context.Background(), domain.Config{PteroPath: filepath.Join(t.TempDir(), "absent")})
	if err != nil {
		t.Fatalf("Collect error: %v", err)
	}
	if snapshot.Installed || len(snapshot.Structure) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}
}

func TestTreeCollectorUsesCache(t *testing.T) {
	root := buildInstall(t)
	fileCache := cache.NewFileCache(t.TempDir())
	collector := newTestCollector(fileCache)
	cfg := domain.Config{PteroPath: root}

	first, err := collector.Collect(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fileCache.Get(domain.SystemAnalysisKey); !ok {
		t.Fatal("snapshot should be cached")
	}

	if err := os.Remove(filepath.Join(root, "artisan")); err != nil {
		t.Fatal(err)
	}
	second, err := collector.Collect(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if second.Installed != first.Installed {
		t.Fatal("cached snapshot should be served")
	}

	refreshed, err := collector.Refresh(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.Installed {
		t.Fatal("refresh should re-scan the install root")
	}
}

func TestTreeCollectorHonoursCancellation(t *testing.T) {
	root := buildInstall(t)
	collector := newTestCollector(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := collector.Collect(ctx, domain.Config{PteroPath: root}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

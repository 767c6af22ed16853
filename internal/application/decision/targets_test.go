package decision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/pteroai-go/internal/domain"
)

func TestExtractMentions(t *testing.T) {
	tests := []struct {
		request string
		want    []string
	}{
		{"fix bug in app.py", []string{"app.py"}},
		{"change Console.TSX and server/routes.php please", []string{"Console.TSX", "server/routes.php"}},
		{"update config.json then docker-compose.yml", []string{"config.json", "docker-compose.yml"}},
		{"restart the panel", []string{}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ExtractMentions(tt.request)); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", tt.request, diff)
		}
	}
}

func TestResolveTargetsFirstCandidateWins(t *testing.T) {
	root := t.TempDir()
	mustWrite := func(rel string) {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite("resources/scripts/App.tsx")
	mustWrite("resources/scripts/components/App.tsx")
	mustWrite("app/Http/Controllers/ServerController.php")

	exists := func(p string) bool {
		info, err := os.Stat(p)
		return err == nil && !info.IsDir()
	}
	got := ResolveTargets(root, domain.DefaultCandidateRoots(),
		[]string{"App.tsx", "ServerController.php", "missing.py", "App.tsx"}, exists)
	want := []string{
		filepath.Join(root, "resources/scripts/App.tsx"),
		filepath.Join(root, "app/Http/Controllers/ServerController.php"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("targets (-want +got):\n%s", diff)
	}
}

func TestAnalyzeContextDepthFirstFilesOnly(t *testing.T) {
	system := domain.SystemContext{Structure: []domain.ContextNode{
		{Name: "app.py.d", Type: domain.NodeDirectory, Children: []domain.ContextNode{
			{Name: "app.py", Type: domain.NodeFile},
		}},
		{Name: "resources", Type: domain.NodeDirectory, Children: []domain.ContextNode{
			{Name: "old_app.py", Type: domain.NodeFile},
		}},
		{Name: "app.py", Type: domain.NodeFile},
	}}

	analysis := AnalyzeContext("fix bug in app.py", system)
	want := []domain.ContextMatch{
		{Path: "app.py.d/app.py", Type: domain.NodeFile, Token: "app.py"},
		{Path: "resources/old_app.py", Type: domain.NodeFile, Token: "app.py"},
		{Path: "app.py", Type: domain.NodeFile, Token: "app.py"},
	}
	if diff := cmp.Diff(want, analysis.Matches); diff != "" {
		t.Fatalf("matches (-want +got):\n%s", diff)
	}
}

func TestParseAlternatives(t *testing.T) {
	got := ParseAlternatives("# heading\n\n  first  \nsecond\n# skip\nthird\nfourth\n")
	if diff := cmp.Diff([]string{"first", "second", "third"}, got); diff != "" {
		t.Fatal(diff)
	}
	if got := ParseAlternatives(""); len(got) != 0 {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestRequestKeyIsStable(t *testing.T) {
	if RequestKey("a") != RequestKey("a") || RequestKey("a") == RequestKey("a ") {
		t.Fatal("request key must match exact text only")
	}
	if got := RequestKey("a"); got[:len(domain.RequestCachePrefix)] != domain.RequestCachePrefix {
		t.Fatalf("missing prefix: %s", got)
	}
}

func TestResolveTargetsStaysUnderRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "pterodactyl")
	if err := os.MkdirAll(filepath.Join(root, "resources/scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"secrets.json", "pterodactyl/resources/notes.md"} {
		if err := os.WriteFile(filepath.Join(base, rel), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	exists := func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	got := ResolveTargets(root, []string{"", "resources/scripts"},
		ExtractMentions("fix ../secrets.json please"), exists)
	if len(got) != 0 {
		t.Fatalf("resolved outside the install root: %v", got)
	}

	// ".." that stays inside root is still allowed
	got = ResolveTargets(root, []string{"", "resources/scripts"},
		ExtractMentions("update ../notes.md"), exists)
	want := []string{filepath.Join(root, "resources", "notes.md")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

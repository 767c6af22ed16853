package knowledge

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/pteroai-go/internal/domain"
)

func TestDetectLanguage(t *testing.T) {
	tests := map[string]string{
		"app.py":                 "Python",
		"ServerRow.TSX":          "React TypeScript",
		"index.jsx":              "React JSX",
		"Controller.php":         "PHP",
		"main.go":                "Go",
		"config.yml":             "YAML",
		"README.md":              "Markdown",
		"Makefile":               "Unknown",
		"archive.tar.gz":         "Unknown",
		"resources/scripts/a.ts": "TypeScript",
	}
	for path, want := range tests {
		if got := DetectLanguage(path); got != want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestScanStructurePython(t *testing.T) {
	code := strings.Join([]string{
		"import os",
		"from flask import Flask",
		"",
		"class Handler(Base):",
		"    def get(self):",
		"        return 1",
		"",
		"async def main():",
		"    pass",
	}, "\n")

	got := ScanStructure(code, "Python")
	want := domain.FileStructure{
		Functions:  []domain.Symbol{{Name: "get", Line: 5}, {Name: "main", Line: 8}},
		Classes:    []domain.Symbol{{Name: "Handler", Line: 4}},
		Imports:    []domain.Symbol{{Name: "import os", Line: 1}, {Name: "from flask import Flask", Line: 2}},
		Exports:    []domain.Symbol{},
		Components: []domain.Symbol{},
		Hooks:      []domain.Symbol{},
		Summary:    "1 classes, 2 functions",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("structure mismatch (-want +got):\n%s", diff)
	}
}

func TestScanStructureTSX(t *testing.T) {
	code := strings.Join([]string{
		"import React, { useState } from 'react';",
		"export default function ServerRow() {",
		"  const [open, setOpen] = useState(false);",
		"  const toggle = () => setOpen(!open);",
		"  useEffect(() => {}, []);",
		"  const [x] = useState(0);",
		"  return null;",
		"}",
	}, "\n")

	got := ScanStructure(code, "React TypeScript")

	if diff := cmp.Diff([]domain.Symbol{{Name: "ServerRow", Line: 2}, {Name: "toggle", Line: 4}}, got.Functions); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Symbol{{Name: "ServerRow", Line: 2}}, got.Components); diff != "" {
		t.Errorf("components (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]domain.Symbol{{Name: "useState", Line: 1}, {Name: "useEffect", Line: 5}}, got.Hooks); diff != "" {
		t.Errorf("hooks (-want +got):\n%s", diff)
	}
	if len(got.Imports) != 1 || len(got.Exports) != 1 {
		t.Errorf("imports/exports = %v / %v", got.Imports, got.Exports)
	}
}

func TestScanStructurePlainJSHasNoComponents(t *testing.T) {
	got := ScanStructure("function Widget() { useThing(); }", "JavaScript")
	if len(got.Components) != 0 || len(got.Hooks) != 0 {
		t.Errorf("plain JS should not report components or hooks: %+v", got)
	}
	if len(got.Functions) != 1 {
		t.Errorf("functions = %v", got.Functions)
	}
}

func TestScanStructureGoAndPHP(t *testing.T) {
	goCode := "package main\n\nimport (\n\t\"fmt\"\n)\n\ntype Server struct{}\n\nfunc (s *Server) Start() {}\nfunc helper() {}\n"
	g := ScanStructure(goCode, "Go")
	if len(g.Imports) != 1 || len(g.Classes) != 1 || len(g.Functions) != 2 || len(g.Exports) != 2 {
		t.Errorf("go structure = %+v", g)
	}

	phpCode := "<?php\nuse Pterodactyl\\Models\\Server;\nclass ServerController extends Controller\n{\n    public function index()\n    {\n    }\n}\n"
	p := ScanStructure(phpCode, "PHP")
	if len(p.Imports) != 1 || len(p.Classes) != 1 || len(p.Functions) != 1 {
		t.Errorf("php structure = %+v", p)
	}
}

func TestScanStructureUnknownIsSimple(t *testing.T) {
	got := ScanStructure("whatever", "Unknown")
	if got.Summary != "simple code" {
		t.Errorf("summary = %q", got.Summary)
	}
}

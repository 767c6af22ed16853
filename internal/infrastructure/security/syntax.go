package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
	"gopkg.in/yaml.v3"
	"mvdan.cc/sh/v3/syntax"
)

// syntaxChecker reports a parse problem for the new code, or nil when it is well formed.
type syntaxChecker func(name, code string) error

var bracketLanguages = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".php": true, ".css": true,
	".c": true, ".h": true, ".cpp": true, ".java": true, ".cs": true, ".rs": true,
}

func checkerFor(filePath string) syntaxChecker {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch {
	case ext == ".py":
		return checkPython
	case ext == ".go":
		return checkGo
	case ext == ".sh" || ext == ".bash":
		return checkShell
	case ext == ".json":
		return checkJSON
	case ext == ".yaml" || ext == ".yml":
		return checkYAML
	case ext == ".toml":
		return checkTOML
	case bracketLanguages[ext]:
		return checkBrackets
	default:
		return nil
	}
}

// CheckSyntax validates code for the language implied by filePath. Unknown
// extensions always pass.
func CheckSyntax(filePath, code string) error {
	check := checkerFor(filePath)
	if check == nil {
		return nil
	}
	return check(filepath.Base(filePath), code)
}

func checkPython(_ string, code string) error {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, []byte(code))
	if err != nil {
		return fmt.Errorf("python parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		if node := firstErrorNode(root); node != nil {
			return fmt.Errorf("python syntax error near line %d", node.StartPoint().Row+1)
		}
		return errors.New("python syntax error")
	}
	return nil
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || !child.HasError() && !child.IsMissing() {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	return nil
}

func checkGo(name, code string) error {
	_, err := parser.ParseFile(token.NewFileSet(), name, code, parser.AllErrors)
	return err
}

func checkShell(name, code string) error {
	p := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	_, err := p.Parse(strings.NewReader(code), name)
	return err
}

func checkJSON(_ string, code string) error {
	var v interface{}
	return json.Unmarshal([]byte(code), &v)
}

func checkYAML(_ string, code string) error {
	dec := yaml.NewDecoder(bytes.NewReader([]byte(code)))
	for {
		var doc interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func checkTOML(_ string, code string) error {
	var v map[string]interface{}
	_, err := toml.Decode(code, &v)
	return err
}

// checkBrackets compares raw counts of each bracket pair. Brackets inside
// strings and comments are counted too.
func checkBrackets(_ string, code string) error {
	pairs := [][2]string{{"{", "}"}, {"(", ")"}, {"[", "]"}}
	for _, pair := range pairs {
		open := strings.Count(code, pair[0])
		closed := strings.Count(code, pair[1])
		if open != closed {
			return fmt.Errorf("unbalanced %s%s: %d opening, %d closing", pair[0], pair[1], open, closed)
		}
	}
	return nil
}

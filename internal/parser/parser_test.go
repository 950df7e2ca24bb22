package parser

import "testing"

const sampleSource = `import os
from pathlib import Path

class Analyzer:
    def run(self):
        pass

def main():
    analyzer = Analyzer()
    analyzer.run()
`

func TestParsePython(t *testing.T) {
	p := NewPython()
	defer p.Close()

	result, err := p.Parse([]byte(sampleSource))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	defer result.Close()

	if result.HasErrors() {
		t.Error("expected clean parse of valid source")
	}

	funcs := result.FindNodesByType("function_definition")
	if len(funcs) != 2 {
		t.Errorf("expected 2 function definitions, got %d", len(funcs))
	}

	classes := result.FindNodesByType("class_definition")
	if len(classes) != 1 {
		t.Errorf("expected 1 class definition, got %d", len(classes))
	}
}

func TestNodeText(t *testing.T) {
	p := NewPython()
	defer p.Close()

	result, err := p.Parse([]byte("def greet():\n    pass\n"))
	if err != nil {
		t.Fatal(err)
	}
	defer result.Close()

	funcs := result.FindNodesByType("function_definition")
	if len(funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(funcs))
	}

	name := funcs[0].ChildByFieldName("name")
	if got := result.NodeText(name); got != "greet" {
		t.Errorf("expected function name greet, got %q", got)
	}
}

func TestParseMalformedSourceStillReturnsTree(t *testing.T) {
	p := NewPython()
	defer p.Close()

	// tree-sitter produces an error-tolerant tree rather than failing.
	result, err := p.Parse([]byte("def broken(:::\n"))
	if err != nil {
		t.Fatalf("unexpected hard failure: %v", err)
	}
	defer result.Close()

	if !result.HasErrors() {
		t.Error("expected parse errors for malformed source")
	}
}

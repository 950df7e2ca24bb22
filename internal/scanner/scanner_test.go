package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// writeFile creates a file with parent directories as needed.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScanFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "print(1)")
	writeFile(t, filepath.Join(root, "b.txt"), "not code")
	writeFile(t, filepath.Join(root, "sub", "c.py"), "print(2)")

	res := Scan([]string{root}, []string{".py"}, nil)

	if len(res.Paths) != 2 {
		t.Fatalf("expected 2 paths, got %d: %v", len(res.Paths), res.Paths)
	}
	for _, p := range res.Paths {
		if filepath.Ext(p) != ".py" {
			t.Errorf("unexpected extension for %s", p)
		}
	}
}

func TestScanExcludeSubstrings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.py"), "x")
	writeFile(t, filepath.Join(root, "__pycache__", "skip.py"), "x")
	writeFile(t, filepath.Join(root, "a_backup", "skip2.py"), "x")

	res := Scan([]string{root}, []string{".py"}, []string{"__pycache__", "_backup"})

	if len(res.Paths) != 1 {
		t.Fatalf("expected 1 path, got %v", res.Paths)
	}
	if filepath.Base(res.Paths[0]) != "keep.py" {
		t.Errorf("expected keep.py, got %s", res.Paths[0])
	}
}

func TestScanSkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "visible.py"), "x")
	writeFile(t, filepath.Join(root, ".hidden.py"), "x")
	writeFile(t, filepath.Join(root, ".git", "hooks.py"), "x")

	res := Scan([]string{root}, []string{".py"}, nil)

	if len(res.Paths) != 1 || filepath.Base(res.Paths[0]) != "visible.py" {
		t.Errorf("expected only visible.py, got %v", res.Paths)
	}
}

func TestScanMissingRootIsWarningNotError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "x")
	missing := filepath.Join(root, "does-not-exist")

	res := Scan([]string{root, missing}, []string{".py"}, nil)

	if len(res.Paths) != 1 {
		t.Errorf("expected 1 path from the good root, got %v", res.Paths)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning for the missing root, got %v", res.Warnings)
	}
	if res.Warnings[0].Path != missing {
		t.Errorf("warning should name the missing root, got %+v", res.Warnings[0])
	}
}

func TestScanSymlinksAreWarned(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation not reliable on windows")
	}

	root := t.TempDir()
	target := filepath.Join(root, "real.py")
	writeFile(t, target, "x")
	link := filepath.Join(root, "link.py")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res := Scan([]string{root}, []string{".py"}, nil)

	if len(res.Paths) != 1 {
		t.Errorf("expected only the real file, got %v", res.Paths)
	}
	found := false
	for _, w := range res.Warnings {
		if w.Path == link {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning for the symlink, got %v", res.Warnings)
	}
}

func TestScanIsRestartable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), "x")
	writeFile(t, filepath.Join(root, "b.py"), "y")
	writeFile(t, filepath.Join(root, "sub", "c.py"), "z")

	first := Scan([]string{root}, []string{".py"}, nil)
	second := Scan([]string{root}, []string{".py"}, nil)

	sort.Strings(first.Paths)
	sort.Strings(second.Paths)

	if len(first.Paths) != len(second.Paths) {
		t.Fatalf("re-scan produced different counts: %d vs %d", len(first.Paths), len(second.Paths))
	}
	for i := range first.Paths {
		if first.Paths[i] != second.Paths[i] {
			t.Errorf("re-scan mismatch at %d: %s vs %s", i, first.Paths[i], second.Paths[i])
		}
	}
}

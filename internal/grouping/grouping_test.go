package grouping

import (
	"testing"
	"time"

	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/feature"
	"github.com/hargabyte/sift/internal/fingerprint"
)

func defaultNormalizer() *KeyNormalizer {
	return NewKeyNormalizer(config.DefaultConfig().Similarity.SuffixTokens)
}

func TestKeyStripsSuffixTokens(t *testing.T) {
	n := defaultNormalizer()

	tests := []struct {
		path string
		want string
	}{
		{"report.py", "report"},
		{"report_v2.py", "report"},
		{"report_v3.py", "report"},
		{"report_final.py", "report"},
		{"report_enhanced.py", "report"},
		{"report_final_v2.py", "report"}, // stacked qualifiers
		{"deploy_clean.py", "deploy"},
		{"unrelated_thing.py", "unrelated_thing"},
		{"/some/dir/report_v2.py", "report"}, // directory ignored
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := n.Key(tt.path); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestKeyStepScriptsShareBucket(t *testing.T) {
	n := defaultNormalizer()

	if got := n.Key("step01_bootstrap.py"); got != stepBucket {
		t.Errorf("step01 should bucket as %s, got %s", stepBucket, got)
	}
	if got := n.Key("step12_validate_v2.py"); got != stepBucket {
		t.Errorf("step12 should bucket as %s, got %s", stepBucket, got)
	}
	// "step" without a digit is an ordinary name.
	if got := n.Key("stepwise.py"); got == stepBucket {
		t.Errorf("stepwise must not bucket as %s", stepBucket)
	}
}

func TestKeyNeverReturnsEmpty(t *testing.T) {
	n := NewKeyNormalizer([]string{"_v2"})
	// A name that is nothing but a token must not strip to "".
	if got := n.Key("_v2.py"); got == "" {
		t.Error("key must not strip to empty string")
	}
}

func member(path, hash string, size int64, mtime time.Time, fns ...string) Member {
	fs := feature.NewFeatureSet()
	for _, fn := range fns {
		fs.Functions[fn] = true
	}
	return Member{
		Record: &fingerprint.FileRecord{
			Path:        path,
			ContentHash: hash,
			ByteSize:    size,
			ModifiedAt:  mtime,
		},
		Features: fs,
	}
}

func TestBuildGroups(t *testing.T) {
	n := defaultNormalizer()
	now := time.Now()

	members := []Member{
		member("/c/report_v2.py", "h1", 10, now),
		member("/c/report.py", "h2", 10, now),
		member("/c/other.py", "h3", 10, now),
	}

	groups := BuildGroups(members, n)

	if len(groups["report"]) != 2 {
		t.Errorf("expected 2 members in report group, got %d", len(groups["report"]))
	}
	if len(groups["other"]) != 1 {
		t.Errorf("expected 1 member in other group, got %d", len(groups["other"]))
	}
	// Deterministic member order regardless of input order.
	if groups["report"][0].Record.Path != "/c/report.py" {
		t.Errorf("group members should be path-sorted, got %s first", groups["report"][0].Record.Path)
	}
}

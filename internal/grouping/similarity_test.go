package grouping

import (
	"testing"
	"time"

	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/feature"
	"github.com/hargabyte/sift/internal/fingerprint"
)

func defaultWeights() config.Weights {
	return config.DefaultConfig().Similarity.Weights
}

func featureSet(fns, classes, imports []string) *feature.FeatureSet {
	fs := feature.NewFeatureSet()
	for _, v := range fns {
		fs.Functions[v] = true
	}
	for _, v := range classes {
		fs.Classes[v] = true
	}
	for _, v := range imports {
		fs.Imports[v] = true
	}
	return fs
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		x, y []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"a"}, nil, 0},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1},
		{"disjoint", []string{"a"}, []string{"b"}, 0},
		{"half overlap", []string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := make(feature.Set)
			for _, v := range tt.x {
				x[v] = true
			}
			y := make(feature.Set)
			for _, v := range tt.y {
				y[v] = true
			}

			if got := Jaccard(x, y); got != tt.want {
				t.Errorf("Jaccard = %f, want %f", got, tt.want)
			}
			if Jaccard(x, y) != Jaccard(y, x) {
				t.Error("Jaccard must be symmetric")
			}
		})
	}
}

func TestScoreSymmetry(t *testing.T) {
	now := time.Now()
	a := Member{
		Record:   &fingerprint.FileRecord{Path: "a.py", ContentHash: "ha", ByteSize: 100, ModifiedAt: now},
		Features: featureSet([]string{"main", "run"}, []string{"App"}, []string{"os"}),
	}
	b := Member{
		Record:   &fingerprint.FileRecord{Path: "b.py", ContentHash: "hb", ByteSize: 120, ModifiedAt: now},
		Features: featureSet([]string{"main"}, []string{"App"}, []string{"os", "sys"}),
	}

	w := defaultWeights()
	if Score(a, b, w) != Score(b, a, w) {
		t.Errorf("score must be symmetric: %f vs %f", Score(a, b, w), Score(b, a, w))
	}
}

func TestScoreIdenticalContentIsOne(t *testing.T) {
	now := time.Now()
	// Same hash, different paths, no features at all: still 1.0.
	a := Member{
		Record:   &fingerprint.FileRecord{Path: "a.py", ContentHash: "same", ByteSize: 50, ModifiedAt: now},
		Features: feature.NewFeatureSet(),
	}
	b := Member{
		Record:   &fingerprint.FileRecord{Path: "b.py", ContentHash: "same", ByteSize: 50, ModifiedAt: now},
		Features: feature.NewFeatureSet(),
	}

	if got := Score(a, b, defaultWeights()); got != 1.0 {
		t.Errorf("identical content must score 1.0, got %f", got)
	}
}

func TestScoreFeaturelessFilesAreNotSimilar(t *testing.T) {
	now := time.Now()
	a := Member{
		Record:   &fingerprint.FileRecord{Path: "a.py", ContentHash: "ha", ByteSize: 100, ModifiedAt: now},
		Features: feature.NewFeatureSet(),
	}
	b := Member{
		Record:   &fingerprint.FileRecord{Path: "b.py", ContentHash: "hb", ByteSize: 100, ModifiedAt: now},
		Features: feature.NewFeatureSet(),
	}

	// Only the size component can contribute: 0.3 * 1.0.
	if got := Score(a, b, defaultWeights()); got != 0.3 {
		t.Errorf("expected only size weight to contribute, got %f", got)
	}
}

func TestScoreRange(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		a, b Member
	}{
		{
			"near twins",
			Member{Record: &fingerprint.FileRecord{Path: "a.py", ContentHash: "ha", ByteSize: 1000, ModifiedAt: now},
				Features: featureSet([]string{"f1", "f2", "f3"}, []string{"C"}, []string{"os"})},
			Member{Record: &fingerprint.FileRecord{Path: "b.py", ContentHash: "hb", ByteSize: 1010, ModifiedAt: now},
				Features: featureSet([]string{"f1", "f2", "f3"}, []string{"C"}, []string{"os"})},
		},
		{
			"strangers",
			Member{Record: &fingerprint.FileRecord{Path: "a.py", ContentHash: "ha", ByteSize: 100, ModifiedAt: now},
				Features: featureSet([]string{"f1"}, nil, []string{"os"})},
			Member{Record: &fingerprint.FileRecord{Path: "b.py", ContentHash: "hb", ByteSize: 1000, ModifiedAt: now},
				Features: featureSet([]string{"g9"}, []string{"Z"}, []string{"json"})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.a, tt.b, defaultWeights())
			if got < 0 || got > 1 {
				t.Errorf("score %f out of [0,1]", got)
			}
		})
	}
}

func TestPairEdgesRespectsFloorAndOrientation(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	shared := featureSet([]string{"f1", "f2", "f3", "f4"}, []string{"C"}, []string{"os"})

	a := Member{Record: &fingerprint.FileRecord{Path: "report_v1.py", ContentHash: "ha", ByteSize: 1000, ModifiedAt: older}, Features: shared}
	b := Member{Record: &fingerprint.FileRecord{Path: "report_v2.py", ContentHash: "hb", ByteSize: 1000, ModifiedAt: newer}, Features: shared}
	// A stranger far below the floor against either of the above.
	c := Member{Record: &fingerprint.FileRecord{Path: "report_x.py", ContentHash: "hc", ByteSize: 5, ModifiedAt: older},
		Features: featureSet([]string{"zzz"}, nil, nil)}

	edges := PairEdges("report", []Member{a, b, c}, defaultWeights(), 0.5)

	if len(edges) != 1 {
		t.Fatalf("expected 1 edge above the floor, got %d", len(edges))
	}

	e := edges[0]
	if e.PrimaryHash != "hb" {
		t.Errorf("newer file must be primary, got %s", e.PrimaryPath)
	}
	if e.SecondaryHash != "ha" {
		t.Errorf("older file must be secondary, got %s", e.SecondaryPath)
	}
	if e.Score < 0.5 || e.Score > 1 {
		t.Errorf("edge score %f out of expected range", e.Score)
	}
}

func TestOrientTieBreaksOnPath(t *testing.T) {
	same := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	a := member("b_path.py", "ha", 10, same)
	b := member("a_path.py", "hb", 10, same)

	primary, secondary := orient(a, b)
	if primary.Record.Path != "a_path.py" {
		t.Errorf("expected lexicographically smaller path as primary, got %s", primary.Record.Path)
	}
	if secondary.Record.Path != "b_path.py" {
		t.Errorf("expected b_path.py as secondary, got %s", secondary.Record.Path)
	}

	// Deterministic regardless of argument order.
	primary2, _ := orient(b, a)
	if primary2.Record.Path != primary.Record.Path {
		t.Error("orientation must not depend on argument order")
	}
}

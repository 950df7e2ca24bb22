package grouping

import (
	"github.com/hargabyte/sift/internal/config"
	"github.com/hargabyte/sift/internal/feature"
)

// Edge is a scored similarity relationship between two files in a group.
// Conceptually undirected, but stored with a canonical orientation:
// Primary is the file that would be kept (newer modification time, ties
// broken by the lexicographically smaller path) so classification is
// reproducible across runs on unchanged inputs.
type Edge struct {
	PrimaryHash   string
	PrimaryPath   string
	SecondaryHash string
	SecondaryPath string
	Score         float64
	GroupKey      string
}

// Jaccard computes |X∩Y| / |X∪Y| for two feature sets.
// Two empty sets are defined as 0, not 1: featureless files carry no
// evidence of similarity.
func Jaccard(x, y feature.Set) float64 {
	if len(x) == 0 && len(y) == 0 {
		return 0
	}

	intersection := 0
	for v := range x {
		if y[v] {
			intersection++
		}
	}

	union := len(x) + len(y) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// sizeRatio is min/max of the byte sizes, 0 when either is empty.
func sizeRatio(a, b int64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > b {
		a, b = b, a
	}
	return float64(a) / float64(b)
}

// Score computes the weighted similarity of two members. Symmetric by
// construction; byte-identical content short-circuits to 1.0 without any
// feature comparison.
func Score(a, b Member, w config.Weights) float64 {
	if a.Record.ContentHash == b.Record.ContentHash {
		return 1.0
	}

	return w.Size*sizeRatio(a.Record.ByteSize, b.Record.ByteSize) +
		w.Functions*Jaccard(a.Features.Functions, b.Features.Functions) +
		w.Classes*Jaccard(a.Features.Classes, b.Features.Classes) +
		w.Imports*Jaccard(a.Features.Imports, b.Features.Imports)
}

// PairEdges compares every unordered pair within a group (O(n²); groups
// are bounded by files sharing a near-identical name) and returns edges
// for pairs at or above the reporting floor.
func PairEdges(groupKey string, group []Member, w config.Weights, floor float64) []Edge {
	var edges []Edge

	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			score := Score(group[i], group[j], w)
			if score < floor {
				continue
			}

			primary, secondary := orient(group[i], group[j])
			edges = append(edges, Edge{
				PrimaryHash:   primary.Record.ContentHash,
				PrimaryPath:   primary.Record.Path,
				SecondaryHash: secondary.Record.ContentHash,
				SecondaryPath: secondary.Record.Path,
				Score:         score,
				GroupKey:      groupKey,
			})
		}
	}

	return edges
}

// orient picks the primary member of a pair: most recently modified wins,
// ties broken by the lexicographically smaller path.
func orient(a, b Member) (primary, secondary Member) {
	switch {
	case a.Record.ModifiedAt.After(b.Record.ModifiedAt):
		return a, b
	case b.Record.ModifiedAt.After(a.Record.ModifiedAt):
		return b, a
	case a.Record.Path < b.Record.Path:
		return a, b
	default:
		return b, a
	}
}

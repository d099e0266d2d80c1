package detect

import (
	"math"
	"math/rand"
	"sort"
)

// Isolation forest over feature vectors. Anomalous points isolate in fewer
// random splits, so short average path lengths mean high anomaly scores.
// The forest is refit from scratch on every batch; nothing persists across
// invocations.

const maxSubsampleSize = 256

type isoNode struct {
	left, right *isoNode
	splitAttr   int
	splitValue  float64
	size        int // samples that ended in this external node
}

type isolationForest struct {
	trees     []*isoNode
	subsample int
}

// fitForest builds numTrees isolation trees from the matrix using a seeded
// source, so identical batches always produce identical forests.
func fitForest(matrix [][]float64, numTrees int, seed int64) *isolationForest {
	rng := rand.New(rand.NewSource(seed))

	subsample := len(matrix)
	if subsample > maxSubsampleSize {
		subsample = maxSubsampleSize
	}
	heightLimit := int(math.Ceil(math.Log2(float64(subsample))))

	f := &isolationForest{
		trees:     make([]*isoNode, 0, numTrees),
		subsample: subsample,
	}
	for t := 0; t < numTrees; t++ {
		sample := make([][]float64, subsample)
		for i, j := range rng.Perm(len(matrix))[:subsample] {
			sample[i] = matrix[j]
		}
		f.trees = append(f.trees, buildTree(sample, 0, heightLimit, rng))
	}
	return f
}

func buildTree(sample [][]float64, height, heightLimit int, rng *rand.Rand) *isoNode {
	if height >= heightLimit || len(sample) <= 1 {
		return &isoNode{size: len(sample)}
	}

	attr := rng.Intn(len(sample[0]))
	lo, hi := sample[0][attr], sample[0][attr]
	for _, row := range sample[1:] {
		if row[attr] < lo {
			lo = row[attr]
		}
		if row[attr] > hi {
			hi = row[attr]
		}
	}
	if lo == hi {
		// No split possible on a constant attribute; stop here.
		return &isoNode{size: len(sample)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right [][]float64
	for _, row := range sample {
		if row[attr] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &isoNode{
		splitAttr:  attr,
		splitValue: split,
		left:       buildTree(left, height+1, heightLimit, rng),
		right:      buildTree(right, height+1, heightLimit, rng),
	}
}

// pathLength walks a point down a tree, adding the average-path adjustment
// for unresolved external nodes.
func pathLength(node *isoNode, point []float64, depth int) float64 {
	if node.left == nil && node.right == nil {
		return float64(depth) + avgPathLength(node.size)
	}
	if point[node.splitAttr] < node.splitValue {
		return pathLength(node.left, point, depth+1)
	}
	return pathLength(node.right, point, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful BST
// search over n points.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	h := math.Log(float64(n-1)) + 0.5772156649 // harmonic number approximation
	return 2*h - 2*float64(n-1)/float64(n)
}

// score returns the anomaly score in (0,1]; values near 1 isolate quickly
func (f *isolationForest) score(point []float64) float64 {
	sum := 0.0
	for _, tree := range f.trees {
		sum += pathLength(tree, point, 0)
	}
	mean := sum / float64(len(f.trees))
	return math.Pow(2, -mean/avgPathLength(f.subsample))
}

// predict labels each row of the matrix, flagging the contamination
// fraction with the highest anomaly scores as outliers.
func (f *isolationForest) predict(matrix [][]float64, contamination float64) []bool {
	scores := make([]float64, len(matrix))
	for i, row := range matrix {
		scores[i] = f.score(row)
	}

	flagged := int(math.Floor(contamination * float64(len(matrix))))
	outliers := make([]bool, len(matrix))
	if flagged == 0 {
		return outliers
	}

	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	threshold := sorted[flagged-1]

	for i, s := range scores {
		if s >= threshold {
			outliers[i] = true
		}
	}
	return outliers
}

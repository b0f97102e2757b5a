package mixture

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	kmeansMaxIter = 300
	kmeansRelTol  = 1e-4
)

// kmeansLabels partitions the weighted sample into k clusters and returns the
// cluster index of every point.
//
// Centers are seeded with greedy weighted k-means++ and refined with Lloyd
// iterations until the squared center shift falls below a tolerance relative
// to the data variance. A cluster that loses all of its points keeps its
// previous center.
func kmeansLabels(s *Sample, k int, rng *rand.Rand) []int {
	n := s.Len()
	centers := kmeansPlusPlus(s, k, rng)
	labels := make([]int, n)

	var variance float64
	for j := range Features {
		variance += stat.Variance(mat.Col(nil, j, s.points), nil)
	}
	tol := kmeansRelTol * variance / Features
	if math.IsNaN(tol) {
		tol = 0
	}

	sums := mat.NewDense(k, Features, nil)
	mass := make([]float64, k)

	for range kmeansMaxIter {
		assign(s, centers, labels)

		sums.Zero()
		for c := range mass {
			mass[c] = 0
		}
		for i, c := range labels {
			w := s.weights[i]
			mass[c] += w
			row := sums.RawRowView(c)
			row[0] += w * s.points.At(i, 0)
			row[1] += w * s.points.At(i, 1)
		}

		var shift float64
		for c := range k {
			if mass[c] == 0 {
				continue
			}
			row := sums.RawRowView(c)
			floats.Scale(1/mass[c], row)
			center := centers.RawRowView(c)
			dist := floats.Distance(row, center, 2)
			shift += dist * dist
			copy(center, row)
		}

		if shift <= tol {
			break
		}
	}

	assign(s, centers, labels)

	return labels
}

// assign stores the index of the nearest center of every point into labels.
func assign(s *Sample, centers *mat.Dense, labels []int) {
	k, _ := centers.Dims()
	for i := range labels {
		best, bestDist := 0, math.Inf(1)
		x0, x1 := s.points.At(i, 0), s.points.At(i, 1)
		for c := range k {
			d0 := x0 - centers.At(c, 0)
			d1 := x1 - centers.At(c, 1)
			if d := d0*d0 + d1*d1; d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	}
}

// kmeansPlusPlus seeds k centers. Each new center is the best of
// 2+floor(ln k) candidates drawn proportionally to weight × squared distance.
func kmeansPlusPlus(s *Sample, k int, rng *rand.Rand) *mat.Dense {
	n := s.Len()
	centers := mat.NewDense(k, Features, nil)
	trials := 2 + int(math.Log(float64(k)))

	first := drawIndex(s.weights, rng)
	centers.SetRow(0, []float64{s.points.At(first, 0), s.points.At(first, 1)})

	closest := make([]float64, n)
	for i := range closest {
		closest[i] = sqDist(s, i, centers.RawRowView(0))
	}

	score := make([]float64, n)
	for c := 1; c < k; c++ {
		for i := range score {
			score[i] = s.weights[i] * closest[i]
		}

		bestCand, bestPot := -1, math.Inf(1)
		var bestDist []float64
		for range trials {
			cand := drawIndex(score, rng)
			if cand < 0 {
				cand = rng.Intn(n)
			}
			pt := []float64{s.points.At(cand, 0), s.points.At(cand, 1)}
			dist := make([]float64, n)
			var pot float64
			for i := range dist {
				dist[i] = math.Min(closest[i], sqDist(s, i, pt))
				pot += s.weights[i] * dist[i]
			}
			if pot < bestPot {
				bestCand, bestPot, bestDist = cand, pot, dist
			}
		}

		centers.SetRow(c, []float64{s.points.At(bestCand, 0), s.points.At(bestCand, 1)})
		closest = bestDist
	}

	return centers
}

// drawIndex draws an index with probability proportional to p, or -1 when p sums to zero.
func drawIndex(p []float64, rng *rand.Rand) int {
	total := floats.Sum(p)
	if !(total > 0) {
		return -1
	}

	u := rng.Float64() * total
	var acc float64
	last := -1
	for i, v := range p {
		if v <= 0 {
			continue
		}
		acc += v
		last = i
		if u < acc {
			return i
		}
	}

	return last
}

func sqDist(s *Sample, i int, center []float64) float64 {
	d0 := s.points.At(i, 0) - center[0]
	d1 := s.points.At(i, 1) - center[1]

	return d0*d0 + d1*d1
}

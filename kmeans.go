package glyphcat

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

const (
	kmeansMaxIter = 300
	kmeansTol     = 1e-4
)

// sample is a distinct color with the total weight and number of the pixels having it.
type sample struct {
	v      [3]float64
	weight float64
	count  int
}

// cluster is a k-means centroid and the number of pixels assigned to it.
type cluster struct {
	center [3]float64
	count  int
}

// kmeans partitions the weighted samples into k clusters using k-means++
// seeding followed by Lloyd iterations. It stops after kmeansMaxIter rounds,
// when the assignment no longer changes, or when the squared center shift
// drops below kmeansTol scaled by the mean variance of the data. Clusters that
// lose all their members keep their previous center.
func kmeans(samples []sample, k int, rng *rand.Rand) []cluster {
	centers := seedCenters(samples, k, rng)
	labels := make([]int, len(samples))
	for i := range labels {
		labels[i] = -1
	}
	tol := kmeansTol * meanVariance(samples)

	for iter := 0; iter < kmeansMaxIter; iter++ {
		changed := false
		for i, s := range samples {
			l := nearest(s.v, centers)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		var (
			sums    = make([][3]float64, k)
			weights = make([]float64, k)
		)
		for i, s := range samples {
			l := labels[i]
			for c := 0; c < 3; c++ {
				sums[l][c] += s.v[c] * s.weight
			}
			weights[l] += s.weight
		}

		shift := 0.0
		for l := range centers {
			if weights[l] == 0 {
				continue
			}
			var next [3]float64
			for c := 0; c < 3; c++ {
				next[c] = sums[l][c] / weights[l]
			}
			shift += sqDist(next, centers[l])
			centers[l] = next
		}
		if shift <= tol {
			// Assign once more against the final centers.
			for i, s := range samples {
				labels[i] = nearest(s.v, centers)
			}
			break
		}
	}

	clusters := make([]cluster, k)
	for l := range clusters {
		clusters[l].center = centers[l]
	}
	for i, s := range samples {
		clusters[labels[i]].count += s.count
	}
	return clusters
}

// seedCenters picks the initial centers with the k-means++ strategy: the first
// one proportionally to the sample weight, the following ones proportionally to
// the weight times the squared distance from the closest center chosen so far.
func seedCenters(samples []sample, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	dist := make([]float64, len(samples))
	for i := range dist {
		dist[i] = 1
	}

	for len(centers) < k {
		c := samples[pick(samples, dist, rng)].v
		centers = append(centers, c)
		for i, s := range samples {
			d := sqDist(s.v, c)
			if len(centers) == 1 || d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// pick draws a sample index with probability proportional to weight*dist.
func pick(samples []sample, dist []float64, rng *rand.Rand) int {
	total := 0.0
	for i, s := range samples {
		total += s.weight * dist[i]
	}
	if total <= 0 {
		// Every sample already coincides with a center.
		return rng.Intn(len(samples))
	}
	r := rng.Float64() * total
	for i, s := range samples {
		r -= s.weight * dist[i]
		if r < 0 {
			return i
		}
	}
	return len(samples) - 1
}

func nearest(v [3]float64, centers [][3]float64) int {
	best, bestDist := 0, math.Inf(1)
	for l, c := range centers {
		if d := sqDist(v, c); d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

func sqDist(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

// meanVariance returns the per-channel population variance of the pixels
// averaged over the three channels.
func meanVariance(samples []sample) float64 {
	col := make([]float64, len(samples))
	counts := make([]float64, len(samples))
	for i, s := range samples {
		counts[i] = float64(s.count)
	}
	sum := 0.0
	for c := 0; c < 3; c++ {
		for i, s := range samples {
			col[i] = s.v[c]
		}
		sum += stat.PopVariance(col, counts)
	}
	return sum / 3
}

package game

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// SolveAssignment returns the minimum-cost perfect matching of a square cost
// matrix: a[row] is the column paired with row. It runs the O(n³) Hungarian
// method with row and column potentials. An empty matrix yields an empty
// assignment; a non-square matrix is a caller bug and panics.
func SolveAssignment(cost [][]float64) []int {
	n := len(cost)
	if n == 0 {
		return []int{}
	}
	for i, row := range cost {
		if len(row) != n {
			panic(fmt.Sprintf("game: cost matrix row %d has %d columns, want %d", i, len(row), n))
		}
	}

	// 1-based working arrays; index 0 is the virtual start column.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	match := make([]int, n+1) // match[col] = row
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)

	for row := 1; row <= n; row++ {
		match[0] = row
		col0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}
		for {
			used[col0] = true
			i0 := match[col0]
			delta := math.Inf(1)
			col1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = col0
				}
				if minv[j] < delta {
					delta = minv[j]
					col1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[match[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			col0 = col1
			if match[col0] == 0 {
				break
			}
		}
		// Unwind the augmenting path.
		for col0 != 0 {
			col1 := way[col0]
			match[col0] = match[col1]
			col0 = col1
		}
	}

	a := make([]int, n)
	for j := 1; j <= n; j++ {
		a[match[j]-1] = j - 1
	}
	return a
}

// DistanceCostMatrix builds cost[i][j] = |from[i] - to[j]|.
func DistanceCostMatrix(from, to []mgl64.Vec3) [][]float64 {
	cost := make([][]float64, len(from))
	for i, f := range from {
		cost[i] = make([]float64, len(to))
		for j, t := range to {
			cost[i][j] = f.Sub(t).Len()
		}
	}
	return cost
}

// AssignmentCost sums the cells selected by a.
func AssignmentCost(cost [][]float64, a []int) float64 {
	total := 0.0
	for row, col := range a {
		total += cost[row][col]
	}
	return total
}

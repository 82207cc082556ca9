package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

// bruteForceMin returns the minimum total cost over every permutation.
func bruteForceMin(cost [][]float64) float64 {
	n := len(cost)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := math.Inf(1)
	var walk func(k int)
	walk = func(k int) {
		if k == n {
			if c := AssignmentCost(cost, perm); c < best {
				best = c
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			walk(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	walk(0)
	return best
}

func isBijection(a []int) bool {
	seen := make(map[int]bool, len(a))
	for _, c := range a {
		if c < 0 || c >= len(a) || seen[c] {
			return false
		}
		seen[c] = true
	}
	return true
}

func TestSolveAssignment_Empty(t *testing.T) {
	a := SolveAssignment(nil)
	if a == nil || len(a) != 0 {
		t.Fatalf("expected empty assignment, got %v", a)
	}
}

func TestSolveAssignment_OneByOne(t *testing.T) {
	a := SolveAssignment([][]float64{{7}})
	if len(a) != 1 || a[0] != 0 {
		t.Fatalf("expected [0], got %v", a)
	}
}

func TestSolveAssignment_KnownMatrix(t *testing.T) {
	cost := [][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}
	a := SolveAssignment(cost)
	if got := AssignmentCost(cost, a); got != 5 {
		t.Fatalf("expected total 5, got %.1f (assignment %v)", got, a)
	}
	want := []int{1, 0, 2}
	for i := range want {
		if a[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, a)
		}
	}
}

func TestSolveAssignment_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7)) // #nosec G404 -- test data
	for n := 1; n <= 5; n++ {
		for trial := 0; trial < 60; trial++ {
			cost := make([][]float64, n)
			for i := range cost {
				cost[i] = make([]float64, n)
				for j := range cost[i] {
					cost[i][j] = rng.Float64() * 20
				}
			}
			a := SolveAssignment(cost)
			if !isBijection(a) {
				t.Fatalf("n=%d trial=%d: not a bijection: %v", n, trial, a)
			}
			got := AssignmentCost(cost, a)
			best := bruteForceMin(cost)
			if math.Abs(got-best) > 1e-9 {
				t.Fatalf("n=%d trial=%d: expected optimum %.6f, got %.6f", n, trial, best, got)
			}
			identity := make([]int, n)
			for i := range identity {
				identity[i] = i
			}
			if got > AssignmentCost(cost, identity)+1e-9 {
				t.Fatalf("n=%d trial=%d: worse than identity pairing", n, trial)
			}
		}
	}
}

func TestSolveAssignment_DistanceMatrixBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(11)) // #nosec G404 -- test data
	for n := 2; n <= 5; n++ {
		from := make([]mgl64.Vec3, n)
		for i := range from {
			from[i] = mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*20 - 10, 1}
		}
		to := GenerateFormation(mgl64.Vec3{rng.Float64() * 5, rng.Float64() * 5, 0}, n, 1.5, 1)
		cost := DistanceCostMatrix(from, to)
		got := AssignmentCost(cost, SolveAssignment(cost))
		if best := bruteForceMin(cost); math.Abs(got-best) > 1e-9 {
			t.Fatalf("n=%d: expected %.6f, got %.6f", n, best, got)
		}
	}
}

func TestSolveAssignment_AllTiesStillBijection(t *testing.T) {
	cost := [][]float64{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	if a := SolveAssignment(cost); !isBijection(a) {
		t.Fatalf("expected bijection, got %v", a)
	}
}

func TestSolveAssignment_NonSquarePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-square matrix")
		}
	}()
	SolveAssignment([][]float64{{1, 2}, {3}})
}

func TestDistanceCostMatrix_Shape(t *testing.T) {
	from := []mgl64.Vec3{{0, 0, 0}, {3, 4, 0}}
	to := []mgl64.Vec3{{0, 0, 0}, {0, 0, 0}}
	cost := DistanceCostMatrix(from, to)
	if len(cost) != 2 || len(cost[0]) != 2 {
		t.Fatalf("expected 2x2, got %dx%d", len(cost), len(cost[0]))
	}
	if cost[1][0] != 5 {
		t.Fatalf("expected distance 5, got %.3f", cost[1][0])
	}
}

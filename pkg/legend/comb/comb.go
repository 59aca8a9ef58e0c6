// Package comb enumerates fixed-weight boolean sequences.
//
// The legend packer treats every candidate split position as a slot that is
// either cut or not. Trying every placement of k cuts over n slots is the
// enumeration of all length-n boolean sequences with exactly k true values,
// which is what this package produces.
//
// Sequences are generated in lexicographic order with true sorting before
// false, so for (3, 2) the order is:
//
//	[true true false]
//	[true false true]
//	[false true true]
//
// The count grows as C(n, k). Use [Binomial] to size the search before
// enumerating.
package comb

import (
	"iter"
	"slices"

	"github.com/matzehuels/legendpack/pkg/errors"
)

// Binomial returns C(n, k), the number of ways to choose k slots out of n.
// It returns 0 when k < 0 or k > n.
//
// The result saturates at the maximum int instead of overflowing, which is
// far beyond any count a caller could enumerate.
func Binomial(n, k int) int {
	if k < 0 || n < 0 || k > n {
		return 0
	}
	k = min(k, n-k)
	result := 1
	for i := 1; i <= k; i++ {
		next := result * (n - k + i)
		if next/(n-k+i) != result {
			return int(^uint(0) >> 1)
		}
		result = next / i
	}
	return result
}

// Combinations yields every length-n sequence with exactly k true values.
//
// The yielded slice is reused between iterations; clone it to keep it.
// Invalid arguments (n < 0, k < 0, k > n) yield nothing.
func Combinations(n, k int) iter.Seq[[]bool] {
	return func(yield func([]bool) bool) {
		if n < 0 || k < 0 || k > n {
			return
		}
		seq := make([]bool, n)
		// idx holds the positions of the true slots in increasing order.
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
			seq[i] = true
		}
		for {
			if !yield(seq) {
				return
			}
			// Advance the rightmost index that still has room to move.
			i := k - 1
			for i >= 0 && idx[i] == n-k+i {
				i--
			}
			if i < 0 {
				return
			}
			seq[idx[i]] = false
			idx[i]++
			seq[idx[i]] = true
			for j := i + 1; j < k; j++ {
				seq[idx[j]] = false
				idx[j] = idx[j-1] + 1
				seq[idx[j]] = true
			}
		}
	}
}

// AllComb returns all length-n boolean sequences with exactly k true values.
// Each returned slice is a separate allocation.
//
// AllComb(1, 1) is [[true]] and AllComb(n, 0) is a single all-false sequence.
// It returns an INVALID_ARGUMENT error when n < 0, k < 0 or k > n.
func AllComb(n, k int) ([][]bool, error) {
	if n < 0 || k < 0 {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "comb: n and k must be non-negative (n=%d, k=%d)", n, k)
	}
	if k > n {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "comb: cannot choose %d of %d slots", k, n)
	}
	result := make([][]bool, 0, Binomial(n, k))
	for seq := range Combinations(n, k) {
		result = append(result, slices.Clone(seq))
	}
	return result, nil
}

// Indices converts a boolean sequence into the positions of its true values.
func Indices(seq []bool) []int {
	var out []int
	for i, v := range seq {
		if v {
			out = append(out, i)
		}
	}
	return out
}

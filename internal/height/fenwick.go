// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

// Package height implements the row-height index (spec C9): a Fenwick
// (binary indexed) tree over per-row heights for O(log N) prefix sums and
// a lower_bound binary search, plus the incremental wrap-text measurement
// scheduler that keeps it up to date. Grounded on the teacher's
// internal/app/table.go viewport math, generalized from a fixed
// one-row-per-line layout to variable, measured row heights.
package height

// Index is a prefix-sum (Fenwick) tree over row heights.
type Index struct {
	tree  []int
	total int
	n     int
}

// From builds an Index in O(N) from an initial heights slice.
func From(heights []int) *Index {
	n := len(heights)
	idx := &Index{tree: make([]int, n+1), n: n}
	for i, h := range heights {
		idx.tree[i+1] += h
		j := i + 1 + lowBit(i+1)
		if j <= n {
			idx.tree[j] += idx.tree[i+1]
		}
		idx.total += h
	}
	return idx
}

func lowBit(i int) int { return i & (-i) }

// Len returns the number of rows tracked.
func (idx *Index) Len() int { return idx.n }

// Sum returns the prefix sum of the first count heights (count in
// [0, Len()]).
func (idx *Index) Sum(count int) int {
	if count <= 0 {
		return 0
	}
	if count > idx.n {
		count = idx.n
	}
	sum := 0
	for i := count; i > 0; i -= lowBit(i) {
		sum += idx.tree[i]
	}
	return sum
}

// Add applies delta to row index (0-based), updating affected prefix
// sums in O(log N).
func (idx *Index) Add(index int, delta int) {
	if index < 0 || index >= idx.n || delta == 0 {
		return
	}
	idx.total += delta
	for i := index + 1; i <= idx.n; i += lowBit(i) {
		idx.tree[i] += delta
	}
}

// Total returns the sum of all row heights.
func (idx *Index) Total() int {
	return idx.total
}

// LowerBound returns the smallest index k (0-based) such that
// Sum(k+1) >= target, or Len() if no such index exists. Used to find the
// first row whose prefix sum exceeds a scroll offset.
func (idx *Index) LowerBound(target int) int {
	if target <= 0 {
		return 0
	}
	pos := 0
	// Largest power of two not exceeding idx.n, for the standard Fenwick
	// binary-lifting lower_bound walk.
	logN := 1
	for logN*2 <= idx.n {
		logN *= 2
	}
	remaining := target
	for step := logN; step > 0; step /= 2 {
		next := pos + step
		if next <= idx.n && idx.tree[next] < remaining {
			pos = next
			remaining -= idx.tree[next]
		}
	}
	if pos >= idx.n {
		return idx.n
	}
	return pos
}

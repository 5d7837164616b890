package utils

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				histo[pm.GetBucketDimension(np)]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Bucket probe
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			for k := 0; k < maxIndex; k++ {
				tryCount, bn, min, max := pm.getBucketWithTryCount(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax && tryCount <= 1)
			}
		}
		pm := NewPartitionMap(3, 10)
		bn, _, _ := pm.GetBucket(10)
		assert.Equal(t, -1, bn)
		bn, _, _ = pm.GetBucket(-1)
		assert.Equal(t, -1, bn)
	}
}

func TestParallelDegreeFor(t *testing.T) {
	assert.Equal(t, 4, ParallelDegreeFor(4, 100))
	assert.Equal(t, 1, ParallelDegreeFor(8, 3))
	assert.Equal(t, 1, ParallelDegreeFor(8, 0))
	assert.True(t, ParallelDegreeFor(0, 1<<20) >= 1)
}

func TestForEachBucket(t *testing.T) {
	for _, np := range []int{1, 2, 7, 32} {
		var (
			K       = 101
			visited = make([]int, K)
			mu      sync.Mutex
			calls   int
		)
		pm := NewPartitionMap(np, K)
		pm.ForEachBucket(func(bn, kMin, kMax int) {
			for k := kMin; k < kMax; k++ {
				visited[k]++
			}
			mu.Lock()
			calls++
			mu.Unlock()
		})
		for k := 0; k < K; k++ {
			assert.Equal(t, 1, visited[k])
		}
		assert.Equal(t, np, calls)
	}
	{ // Empty range never calls back
		pm := NewPartitionMap(1, 0)
		pm.ForEachBucket(func(bn, kMin, kMax int) {
			t.Fatalf("unexpected call for empty partition")
		})
	}
}

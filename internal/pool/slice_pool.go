package pool

import "sync"

var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice returns a float64 slice of length size and a release
// function that must be called once the slice is no longer used.
//
// The contents of the slice are not cleared.
//
//	residuals, release := pool.GetFloat64Slice(n)
//	defer release()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	if cap(*ptr) < size {
		*ptr = make([]float64, size)
	}
	*ptr = (*ptr)[:size]

	return *ptr, func() { float64SlicePool.Put(ptr) }
}

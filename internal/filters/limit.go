package filters

import "iter"

// Limit yields at most n values from seq, in order, and stops pulling from seq
// once n values have been yielded. n <= 0 disables the limit.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		count := 0
		for v := range seq {
			if !yield(v) {
				return
			}
			count++
			if count >= n {
				return
			}
		}
	}
}

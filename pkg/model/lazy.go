package model

import "sync"

// lazy is a compute-once cell. The first call to get runs compute; every
// later call, from any goroutine, returns the stored result.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(compute func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = compute()
	})
	return l.val, l.err
}

// Package internal holds small concurrency primitives shared by the
// worker and supervisor packages: a done-channel type, a fixed-interval
// background task runner, and a bounded worker pool. None of it is
// specific to job queues; it exists so that domain packages stay thin.
package internal

import "sync"

// DoneChan is closed exactly once, when whatever it represents has
// finished.
type DoneChan chan struct{}

// DoneFunc starts an asynchronous shutdown and returns a channel that
// closes once it's complete.
type DoneFunc func() DoneChan

func wrapWaitGroup(wg *sync.WaitGroup) DoneChan {
	ret := make(DoneChan)
	go func() {
		wg.Wait()
		close(ret)
	}()
	return ret
}

// Combine returns a DoneChan that closes once both first and second have
// closed.
func Combine(first DoneChan, second DoneChan) DoneChan {
	ret := make(DoneChan)
	go func() {
		<-first
		<-second
		close(ret)
	}()
	return ret
}

package uring

import "sync/atomic"

// barrierDummy exists only to give the fence helpers a target word.
var barrierDummy int64

// Sfence orders all prior stores before any later ones. atomic.AddInt64
// compiles to LOCK XADD on x86-64, which carries full fence semantics;
// the cursor publishes rely on it landing before io_uring_enter is issued.
func Sfence() {
	atomic.AddInt64(&barrierDummy, 0)
}

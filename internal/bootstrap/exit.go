// internal/bootstrap/exit.go

package bootstrap

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/orgoj/anglerfish/internal/logger"
)

// Exit hooks registered by MakeLogger. Hosts run them with Exit, usually via
// defer in main, or with ExitOnSignal.
var (
	hooksMu sync.Mutex
	hooks   []func()
)

func registerExitHook(fn func()) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	hooks = append(hooks, fn)
}

// PendingExitHooks returns the number of hooks Exit would run.
func PendingExitHooks() int {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	return len(hooks)
}

// Exit runs every registered exit hook once, most recently registered first.
// A panicking hook is reported to stderr and does not stop the others. Hooks
// registered while Exit runs are run too.
func Exit() {
	for {
		hooksMu.Lock()
		if len(hooks) == 0 {
			hooksMu.Unlock()
			return
		}
		fn := hooks[len(hooks)-1]
		hooks = hooks[:len(hooks)-1]
		hooksMu.Unlock()

		runHook(fn)
	}
}

func runHook(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.StderrReporter().Report("exit hook panicked: %v", r)
		}
	}()
	fn()
}

// ExitOnSignal blocks until one of sigs (default SIGINT and SIGTERM) arrives
// or ctx is done, then runs Exit.
func ExitOnSignal(ctx context.Context, sigs ...os.Signal) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, sigs...)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	}
	Exit()
}

package utils

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ArthurDelaporte/MediaFeed-Back/internal/logs"
)

// ShutdownManager runs registered tasks, in reverse order, once the process is asked to stop.
type ShutdownManager struct {
	cancelFunc    context.CancelFunc
	shutdownTasks []func(context.Context) error
	timeout       time.Duration
	mu            sync.Mutex
}

func NewShutdownManager(ctx context.Context, timeout time.Duration) (context.Context, *ShutdownManager) {
	ctx, cancel := context.WithCancel(ctx)
	return ctx, &ShutdownManager{
		cancelFunc: cancel,
		timeout:    timeout,
	}
}

func (sm *ShutdownManager) Register(task func(context.Context) error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.shutdownTasks = append(sm.shutdownTasks, task)
}

// Wait blocks until SIGINT/SIGTERM or until ctx is done, then shuts down.
func (sm *ShutdownManager) Wait(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logs.LogJSON("INFO", "Shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case <-ctx.Done():
	}

	sm.Shutdown()
}

// Shutdown cancels the root context and runs every task within the timeout.
func (sm *ShutdownManager) Shutdown() {
	sm.cancelFunc()

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for i := len(sm.shutdownTasks) - 1; i >= 0; i-- {
		if err := sm.shutdownTasks[i](ctx); err != nil {
			logs.LogJSON("ERROR", "Shutdown task failed", map[string]interface{}{"error": err.Error()})
		}
	}
	sm.shutdownTasks = nil

	logs.LogJSON("INFO", "Graceful shutdown complete", nil)
}

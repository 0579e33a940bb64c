package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/ibp/internal/model"
	"github.com/d60-Lab/ibp/pkg/logger"
)

var (
	// ErrQueueFull the dispatcher dropped a notification.
	ErrQueueFull = errors.New("alert queue full")
	// ErrNotifierStopped Notify was called after the workers were stopped.
	ErrNotifierStopped = errors.New("alert notifier stopped")
)

type alertJob struct {
	inmate model.Inmate
	alert  model.Alert
	enqAt  time.Time
}

// AsyncNotifier 异步投递提醒，页面请求不等待下游
type AsyncNotifier struct {
	next    AlertNotifier
	ch      chan alertJob
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
}

func NewAsyncNotifier(next AlertNotifier, queueSize int) *AsyncNotifier {
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &AsyncNotifier{next: next, ch: make(chan alertJob, queueSize), timeout: 5 * time.Second}
}

// Notify queues the alert; it fails when the queue is full or stopped.
func (n *AsyncNotifier) Notify(_ context.Context, in *model.Inmate, a model.Alert) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNotifierStopped
	}
	select {
	case n.ch <- alertJob{inmate: *in, alert: a, enqAt: time.Now()}:
		return nil
	default:
		logger.Warn("alert queue full, drop", zap.Uint("alert", a.AutoID))
		return ErrQueueFull
	}
}

// Start runs workers until the returned stop function is called. Stop
// delivers what is still queued, bounded by ctx.
func (n *AsyncNotifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	done := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for {
				select {
				case job := <-n.ch:
					n.deliver(job)
				case <-stopCh:
					return
				}
			}
		}()
	}

	return func(ctx context.Context) error {
		n.mu.Lock()
		if n.closed {
			n.mu.Unlock()
			return nil
		}
		n.closed = true
		n.mu.Unlock()

		close(stopCh)
		for i := 0; i < workers; i++ {
			<-done
		}
		for {
			select {
			case job := <-n.ch:
				n.deliver(job)
			case <-ctx.Done():
				if left := len(n.ch); left > 0 {
					logger.Warn("alert queue not drained", zap.Int("left", left))
				}
				return ctx.Err()
			default:
				return nil
			}
		}
	}
}

func (n *AsyncNotifier) deliver(job alertJob) {
	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()
	if err := n.next.Notify(ctx, &job.inmate, job.alert); err != nil {
		logger.Warn("alert delivery failed", zap.Uint("alert", job.alert.AutoID), zap.Error(err))
		return
	}
	logger.Debug("alert delivered", zap.Uint("alert", job.alert.AutoID), zap.Duration("latency", time.Since(job.enqAt)))
}

// QueueLen 当前队列长度（采样值）
func (n *AsyncNotifier) QueueLen() int { return len(n.ch) }

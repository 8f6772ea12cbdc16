package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool 固定数量工作 goroutine 的执行器
//
// 队列无界，Submit 从不阻塞：处理方法内部再次投递时不会因为
// 工作 goroutine 全部占满而互相等待。
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool

	workers int
	group   errgroup.Group
	done    chan struct{}
}

// NewPool 创建并启动工作池
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	p := &Pool{
		workers: workers,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workers; i++ {
		p.group.Go(p.work)
	}
	go func() {
		_ = p.group.Wait()
		close(p.done)
	}()

	return p
}

// Submit 将任务加入队列
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		log.Warn("工作池已关闭，丢弃任务")
		return
	}
	p.queue = append(p.queue, task)
	p.mu.Unlock()
	p.cond.Signal()
}

// Workers 返回工作 goroutine 数量
func (p *Pool) Workers() int {
	return p.workers
}

// Pending 返回排队中的任务数
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Close 停止接收任务并等待队列排空
//
// Close 是并发安全的，可以多次调用。ctx 到期时返回 ctx.Err()，
// 工作 goroutine 仍会在后台把队列执行完。
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// String 返回执行器描述
func (p *Pool) String() string {
	return fmt.Sprintf("executor.Pool(%d)", p.workers)
}

// work 工作 goroutine 主循环
func (p *Pool) work() error {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return nil
		}
		task := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(task)
	}
}

// run 执行单个任务，任务 panic 不会杀死工作 goroutine
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("任务 panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	task()
}

// Package main 提供 go-eventbus 演示命令
//
// 注册一组订单相关的订阅者并投递事件，打印处理顺序，
// 用于对比三种分发策略。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	eventbus "github.com/dep2p/go-eventbus"
	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/util/logger"
)

var log = logger.Logger("cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（JSON 或 YAML）")
	preset      = flag.String("preset", "", "预设配置 (default/immediate/async)")
	dispatcher  = flag.String("dispatcher", "", "分发策略 (immediate/per-goroutine/async)，覆盖配置")
	orders      = flag.Int("orders", 2, "投递的订单事件数")
	logLevel    = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址，设置后保持运行直到收到信号")
	dumpConfig  = flag.String("dump-config", "", "以指定格式 (json/yaml) 打印最终配置后退出")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(eventbus.VersionInfo())
		return nil
	}

	if *logLevel != "" {
		level, ok := logger.ParseLevel(*logLevel)
		if !ok {
			return fmt.Errorf("未知日志级别: %s", *logLevel)
		}
		logger.SetGlobalLevel(level)
	}

	cfg, err := loadConfig(*configFile, *preset)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}
	if *dispatcher != "" {
		cfg.Bus.Dispatcher = config.DispatcherKind(*dispatcher)
	}
	cfg, err = config.ValidateAndFix(cfg)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	if *dumpConfig != "" {
		return printConfig(cfg, *dumpConfig)
	}

	var (
		bus     *eventbus.Bus
		metrics *eventbus.Metrics
	)
	tr := &tracer{}
	app := eventbus.NewApp(cfg,
		fx.Populate(&bus, &metrics),
		fx.Invoke(func(b *eventbus.Bus) error {
			return registerDemo(b, tr)
		}),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx := context.Background()
	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}

	fmt.Printf("总线: %s  分发策略: %s  执行器: %s\n", bus.Identifier(), cfg.Bus.Dispatcher, cfg.Executor.Kind)
	for i := 1; i <= *orders; i++ {
		if err := bus.Post(ctx, orderPlaced{ID: i}); err != nil {
			return err
		}
	}
	// 无订阅者，转为 DeadEvent
	if err := bus.Post(ctx, "unrouted"); err != nil {
		return err
	}

	if *metricsAddr != "" {
		if err := serveMetrics(*metricsAddr); err != nil {
			return err
		}
	}

	stopCtx, cancelStop := context.WithTimeout(ctx, cfg.Executor.ShutdownTimeout.Duration()+time.Second)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}

	fmt.Println("处理顺序:")
	for i, line := range tr.lines() {
		fmt.Printf("  %2d. %s\n", i+1, line)
	}

	stats := metrics.Snapshot()
	fmt.Printf("posted=%d dead=%d invocations=%d failures=%d\n",
		stats.Posted, stats.Dead, stats.Invocations, stats.Failures)
	return nil
}

// serveMetrics 提供 /metrics 直到收到退出信号
func serveMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("指标服务已启动", "addr", addr)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errCh:
		return err
	case <-sig:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// ═══════════════════════════════════════════════════════════════════════════
// 演示订阅者
// ═══════════════════════════════════════════════════════════════════════════

type orderPlaced struct{ ID int }

type stockReserved struct{ OrderID int }

type paymentCaptured struct{ OrderID int }

// tracer 记录处理顺序
type tracer struct {
	mu  sync.Mutex
	buf []string
}

func (t *tracer) add(format string, args ...any) {
	t.mu.Lock()
	t.buf = append(t.buf, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

func (t *tracer) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.buf...)
}

// inventory 收到订单后预留库存
type inventory struct {
	bus *eventbus.Bus
	tr  *tracer
}

func (s *inventory) OnOrderPlaced(ctx context.Context, e orderPlaced) error {
	s.tr.add("inventory  <- order %d", e.ID)
	return s.bus.Post(ctx, stockReserved{OrderID: e.ID})
}

// billing 收到订单后扣款，库存预留只记录
type billing struct {
	bus *eventbus.Bus
	tr  *tracer
}

func (s *billing) OnOrderPlaced(ctx context.Context, e orderPlaced) error {
	s.tr.add("billing    <- order %d", e.ID)
	return s.bus.Post(ctx, paymentCaptured{OrderID: e.ID})
}

func (s *billing) OnStockReserved(e stockReserved) {
	s.tr.add("billing    <- stock reserved %d", e.OrderID)
}

// shipping 扣款完成后发货
type shipping struct {
	tr *tracer
}

func (s *shipping) EventHandlers() []eventbus.HandlerMethod {
	return []eventbus.HandlerMethod{
		eventbus.Handle(s.ship),
	}
}

func (s *shipping) ship(_ context.Context, e paymentCaptured) error {
	s.tr.add("shipping   <- payment captured %d", e.OrderID)
	return nil
}

// deadLetters 记录无人处理的事件
type deadLetters struct {
	tr *tracer
}

func (s *deadLetters) OnDeadEvent(e eventbus.DeadEvent) {
	s.tr.add("dead       <- %v", strings.TrimSpace(fmt.Sprint(e.Event)))
}

func registerDemo(bus *eventbus.Bus, tr *tracer) error {
	for _, sub := range []any{
		&inventory{bus: bus, tr: tr},
		&billing{bus: bus, tr: tr},
		&shipping{tr: tr},
		&deadLetters{tr: tr},
	} {
		if err := bus.Register(sub); err != nil {
			return err
		}
	}
	return nil
}

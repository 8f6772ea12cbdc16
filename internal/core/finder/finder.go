package finder

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/multierr"

	"github.com/dep2p/go-eventbus/config"
	"github.com/dep2p/go-eventbus/internal/util/logger"
	pkgif "github.com/dep2p/go-eventbus/pkg/interfaces"
	"github.com/dep2p/go-eventbus/pkg/types"
)

var log = logger.Logger("finder")

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// ============================================================================
// Finder
// ============================================================================

// Finder 按命名约定反射发现处理方法
type Finder struct {
	prefix string
	cache  *lru.Cache[reflect.Type, *scanResult]
}

var _ pkgif.HandlerFinder = (*Finder)(nil)

// scanResult 一个类型的扫描结果
type scanResult struct {
	methods []methodInfo
	err     error
}

// methodInfo 处理方法元信息
type methodInfo struct {
	index      int
	name       string
	eventType  reflect.Type
	withCtx    bool
	returnsErr bool
}

// New 创建 Finder
func New(cfg config.FinderConfig) (*Finder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cache, err := lru.New[reflect.Type, *scanResult](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("finder: create cache: %w", err)
	}
	return &Finder{
		prefix: cfg.MethodPrefix,
		cache:  cache,
	}, nil
}

// Default 使用默认配置创建 Finder
func Default() *Finder {
	f, err := New(config.DefaultFinderConfig())
	if err != nil {
		panic(err)
	}
	return f
}

// FindHandlers 实现 interfaces.HandlerFinder
func (f *Finder) FindHandlers(target any) ([]pkgif.HandlerMethod, error) {
	if target == nil {
		return nil, types.ErrNilSubscriber
	}

	if p, ok := target.(pkgif.HandlerProvider); ok {
		return fromProvider(target, p)
	}

	typ := reflect.TypeOf(target)
	res, ok := f.cache.Get(typ)
	if !ok {
		res = f.scan(typ)
		f.cache.Add(typ, res)
		log.Debug("扫描订阅者类型", "type", typ.String(), "handlers", len(res.methods), "err", res.err)
	}
	if res.err != nil {
		return nil, res.err
	}

	concurrent, err := concurrentSet(target, res.methods)
	if err != nil {
		return nil, err
	}

	val := reflect.ValueOf(target)
	handlers := make([]pkgif.HandlerMethod, 0, len(res.methods))
	for _, mi := range res.methods {
		mode := types.ModeExclusive
		if _, ok := concurrent[mi.name]; ok {
			mode = types.ModeConcurrent
		}
		handlers = append(handlers, pkgif.HandlerMethod{
			EventType: mi.eventType,
			Name:      mi.name,
			Invoke:    invoker(val.Method(mi.index), mi),
			Mode:      mode,
		})
	}
	return handlers, nil
}

// CachedTypes 返回缓存中的类型数
func (f *Finder) CachedTypes() int {
	return f.cache.Len()
}

// ============================================================================
// 反射扫描
// ============================================================================

// scan 扫描类型的方法集
func (f *Finder) scan(typ reflect.Type) *scanResult {
	res := &scanResult{}
	for i := 0; i < typ.NumMethod(); i++ {
		m := typ.Method(i)
		if !f.matches(m.Name) {
			continue
		}
		mi, err := inspect(typ, m)
		if err != nil {
			res.err = multierr.Append(res.err, err)
			continue
		}
		res.methods = append(res.methods, mi)
	}
	if res.err != nil {
		res.methods = nil
	}
	return res
}

// matches 方法名是否为前缀加大写字母开头
func (f *Finder) matches(name string) bool {
	if !strings.HasPrefix(name, f.prefix) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name[len(f.prefix):])
	return unicode.IsUpper(r)
}

// inspect 校验方法签名
//
// m.Type 的第 0 个参数是接收者。
func inspect(typ reflect.Type, m reflect.Method) (methodInfo, error) {
	mt := m.Type
	mi := methodInfo{index: m.Index, name: m.Name}

	args := mt.NumIn() - 1
	first := 1
	if args >= 1 && mt.In(1) == contextType {
		mi.withCtx = true
		args--
		first = 2
	}
	if args != 1 {
		return mi, fmt.Errorf("%w: %s.%s takes %d event arguments, want 1",
			types.ErrInvalidHandlerSignature, typ, m.Name, args)
	}

	mi.eventType = mt.In(first)
	if mi.eventType.Kind() == reflect.Interface {
		return mi, fmt.Errorf("%w: %s.%s event parameter %s is an interface",
			types.ErrInvalidHandlerSignature, typ, m.Name, mi.eventType)
	}

	switch {
	case mt.NumOut() == 0:
	case mt.NumOut() == 1 && mt.Out(0) == errorType:
		mi.returnsErr = true
	default:
		return mi, fmt.Errorf("%w: %s.%s must return nothing or error",
			types.ErrInvalidHandlerSignature, typ, m.Name)
	}
	return mi, nil
}

// invoker 构造反射调用器
func invoker(fn reflect.Value, mi methodInfo) pkgif.HandlerFunc {
	return func(ctx context.Context, event any) error {
		in := make([]reflect.Value, 0, 2)
		if mi.withCtx {
			if ctx == nil {
				ctx = context.Background()
			}
			in = append(in, reflect.ValueOf(ctx))
		}
		in = append(in, reflect.ValueOf(event))

		out := fn.Call(in)
		if mi.returnsErr {
			if err, _ := out[0].Interface().(error); err != nil {
				return err
			}
		}
		return nil
	}
}

// concurrentSet 读取订阅者声明的并发方法
func concurrentSet(target any, methods []methodInfo) (map[string]struct{}, error) {
	ch, ok := target.(pkgif.ConcurrentHandlers)
	if !ok {
		return nil, nil
	}

	known := make(map[string]struct{}, len(methods))
	for _, mi := range methods {
		known[mi.name] = struct{}{}
	}

	set := make(map[string]struct{})
	var errs error
	for _, name := range ch.ConcurrentHandlers() {
		if _, ok := known[name]; !ok {
			errs = multierr.Append(errs, fmt.Errorf("%w: %T declares unknown concurrent handler %q",
				types.ErrInvalidHandlerSignature, target, name))
			continue
		}
		set[name] = struct{}{}
	}
	if errs != nil {
		return nil, errs
	}
	return set, nil
}

// ============================================================================
// 显式绑定
// ============================================================================

// fromProvider 校验订阅者给出的显式处理方法表
func fromProvider(target any, p pkgif.HandlerProvider) ([]pkgif.HandlerMethod, error) {
	table := p.EventHandlers()

	var errs error
	for i, h := range table {
		switch {
		case h.Invoke == nil:
			errs = multierr.Append(errs, fmt.Errorf("%w: %T handler #%d has no invoker",
				types.ErrInvalidHandlerSignature, target, i))
		case h.EventType == nil:
			errs = multierr.Append(errs, fmt.Errorf("%w: %T handler #%d has no event type",
				types.ErrInvalidHandlerSignature, target, i))
		case h.EventType.Kind() == reflect.Interface:
			errs = multierr.Append(errs, fmt.Errorf("%w: %T handler %s event type %s is an interface",
				types.ErrInvalidHandlerSignature, target, h.Name, h.EventType))
		case h.Name == "":
			errs = multierr.Append(errs, fmt.Errorf("%w: %T handler #%d has no name",
				types.ErrInvalidHandlerSignature, target, i))
		}
	}
	if errs != nil {
		return nil, errs
	}

	out := make([]pkgif.HandlerMethod, len(table))
	copy(out, table)
	return out, nil
}

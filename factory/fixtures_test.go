package factory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
)

type testDataType struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

type greeter struct {
	Greeting string
}

func (g *greeter) Greet(name string) string {
	return g.Greeting + ", " + name
}

// fixtureModule mirrors the shapes a real module exports: plain factories,
// deferred factories, constructors, nested exports and JSON strings.
func fixtureModule() Exports {
	return Exports{
		"default": func() *testDataType {
			return &testDataType{Name: "default", ID: 0}
		},
		"create2": func(name string, id int) *testDataType {
			return &testDataType{Name: name, ID: id}
		},
		"createAsync": func(ctx context.Context, name string) *Future[*testDataType] {
			return Go(func() (*testDataType, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Millisecond):
				}
				return &testDataType{Name: name, ID: 2}, nil
			})
		},
		"createString": func() string { return "hello" },
		"createNumber": func() float64 { return 49 },
		"createNumberAsync": func() *Future[float64] {
			return Go(func() (float64, error) { return 49, nil })
		},
		"rejectAsync": func() *Future[string] {
			return Rejected[string](errors.New("async boom"))
		},
		"fail": func() (*testDataType, error) {
			return nil, errors.New("boom")
		},
		"explode": func() *testDataType {
			panic("kaboom")
		},
		"sum": func(base int, rest ...int) int {
			for _, r := range rest {
				base += r
			}
			return base
		},
		"pair": func() (int, int) { return 1, 2 },
		"failAsync": func() *Future[*testDataType] {
			return Rejected[*testDataType](errors.New("boom"))
		},
		"int8":    func(n int8) int8 { return n },
		"int32":   func(n int32) int32 { return n },
		"uint":    func(n uint) uint { return n },
		"float64": func(f float64) float64 { return f },

		"TestDataType": reflect.TypeFor[testDataType](),
		"Counter":      reflect.TypeFor[int](),
		"NewGreeter": NewConstructor(func(greeting string) *greeter {
			return &greeter{Greeting: greeting}
		}),
		"NewDeferred": NewConstructor(func() *Future[string] {
			return Resolved("never awaited")
		}),
		"NewBroken": NewConstructor(func() (*greeter, error) {
			return nil, errors.New("constructor boom")
		}),

		"foo": map[string]any{
			"bar": func() string { return "bar" },
		},
		"greeter": &greeter{Greeting: "hi"},

		"json":       `{"name":"X","id":1}`,
		"jsonAsync":  Resolved(`{"name":"Y","id":2}`),
		"jsonFn":     func() string { return `{"name":"Z","id":3}` },
		"jsonFnAsync": func() *Future[string] {
			return Go(func() (string, error) { return `{"name":"W","id":4}`, nil })
		},
		"notAString":  42,
		"invalidJSON": `{"name":`,
	}
}

// countingImporter serves modules by target and records every import.
type countingImporter struct {
	mu      sync.Mutex
	modules map[string]Module
	targets []string
}

func (c *countingImporter) Import(_ context.Context, target string) (Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets = append(c.targets, target)
	mod, ok := c.modules[target]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, target)
	}
	return mod, nil
}

func (c *countingImporter) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.targets)
}

// lockedBuffer collects log output written from several goroutines.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

type testEnv struct {
	factory  *Factory
	importer *countingImporter
	logs     *lockedBuffer
	fs       afero.Fs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	importer := &countingImporter{modules: map[string]Module{"fixture": fixtureModule()}}
	logs := &lockedBuffer{}
	fs := afero.NewMemMapFs()
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return &testEnv{
		factory:  New(importer, WithLogger(logger), WithFs(fs)),
		importer: importer,
		logs:     logs,
		fs:       fs,
	}
}

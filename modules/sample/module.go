// Package sample is a demonstration module exercising every shape the
// factory understands: plain and deferred factories, constructors, nested
// exports and JSON documents.
package sample

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/specialistvlad/modfactory/factory"
	"github.com/specialistvlad/modfactory/internal/registry"
)

// Name is the module name sample registers under.
const Name = "sample"

// TestDataType is the value built by create2 and the TestDataType
// constructor.
type TestDataType struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}

// Greeter is built by the NewGreeter constructor.
type Greeter struct {
	Greeting string `json:"greeting"`
}

// Greet returns the greeting addressed to name.
func (g *Greeter) Greet(name string) string {
	return fmt.Sprintf("%s, %s!", g.Greeting, name)
}

const document = `{"name":"sample","id":1,"tags":["a","b"]}`

// Exports returns a fresh export table for the module.
func Exports() factory.Exports {
	return factory.Exports{
		"default": func() *TestDataType {
			return &TestDataType{Name: "default"}
		},
		"create2": func(name string, id int) *TestDataType {
			return &TestDataType{Name: name, ID: id}
		},
		"createString": func() string { return "hello" },
		"createNumber": func() float64 { return 49 },
		"createNumberAsync": func(ctx context.Context) *factory.Future[float64] {
			return factory.Go(func() (float64, error) {
				select {
				case <-ctx.Done():
					return 0, ctx.Err()
				case <-time.After(5 * time.Millisecond):
					return 49, nil
				}
			})
		},

		"TestDataType": reflect.TypeFor[TestDataType](),
		"NewGreeter": factory.NewConstructor(func(greeting string) *Greeter {
			if greeting == "" {
				greeting = "Hello"
			}
			return &Greeter{Greeting: greeting}
		}),

		"foo": factory.Exports{
			"bar": func() string { return "bar" },
		},

		"json":      document,
		"jsonAsync": factory.Resolved(document),
		"jsonFn":    func() string { return document },
	}
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the sample exports.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterModule(Name, Exports())
}

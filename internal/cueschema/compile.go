package cueschema

import (
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// rootDefinition is the definition a closed schema is compiled under.
const rootDefinition = "#Schema"

type options struct {
	closed   bool
	filename string
}

// Option configures Compile.
type Option func(*options)

// WithClosed compiles the schema as a definition, so fields the schema does
// not name are rejected.
func WithClosed(closed bool) Option {
	return func(o *options) {
		o.closed = closed
	}
}

// WithFilename sets the filename used in CUE positions and messages.
func WithFilename(name string) Option {
	return func(o *options) {
		o.filename = name
	}
}

// Checker holds a compiled schema. It is safe for concurrent use; checks are
// serialised because a cue.Context must not be shared across goroutines.
type Checker struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
	source string
}

// Compile compiles source into a Checker.
func Compile(source string, opts ...Option) (*Checker, error) {
	o := options{filename: "schema.cue"}
	for _, opt := range opts {
		opt(&o)
	}

	ctx := cuecontext.New()
	src := source
	if o.closed {
		src = fmt.Sprintf("%s: {\n%s\n}\n", rootDefinition, source)
	}

	compiled := ctx.CompileString(src, cue.Filename(o.filename))
	if err := compiled.Err(); err != nil {
		return nil, FormatError(err, o.filename)
	}

	schema := compiled
	if o.closed {
		schema = compiled.LookupPath(cue.ParsePath(rootDefinition))
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("internal error: schema definition %s not found: %w", rootDefinition, err)
		}
	}

	return &Checker{ctx: ctx, schema: schema, source: source}, nil
}

// Source returns the schema source the checker was compiled from.
func (c *Checker) Source() string {
	return c.source
}

// Check validates v against the schema. It returns the violations found, or
// an error if v cannot be represented as a CUE value at all.
func (c *Checker) Check(v any) ([]Violation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.ctx.Encode(v)
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("cannot encode %T as CUE: %w", v, err)
	}

	unified := c.schema.Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return c.violations(err, data), nil
	}
	return nil, nil
}

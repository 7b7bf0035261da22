package extract

import (
	"github.com/goliatone/go-sqltpl/pkg/infer"
	"github.com/goliatone/go-sqltpl/pkg/model"
)

// collector deduplicates variables across a single extraction pass. The
// first discovery of a name creates the record; later discoveries only merge
// additional filter names into it.
type collector struct {
	inferrer *infer.Registry
	method   model.ExtractionMethod
	order    []string
	vars     map[string]*model.Variable
}

func newCollector(inferrer *infer.Registry, method model.ExtractionMethod) *collector {
	return &collector{
		inferrer: inferrer,
		method:   method,
		vars:     make(map[string]*model.Variable),
	}
}

func (c *collector) seen(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// add registers a variable, inferring its type on first sight, and merges
// filter names into the existing record on every sight.
func (c *collector) add(name string, filterNames ...string) {
	if name == "" {
		return
	}
	if existing, ok := c.vars[name]; ok {
		existing.AddFilter(filterNames...)
		return
	}

	inf := c.inferrer.Infer(name)
	variable := &model.Variable{
		Name:             name,
		Type:             inf.Type,
		SubType:          inf.SubType,
		DefaultValue:     infer.Default(inf.Type, inf.SubType),
		Required:         infer.Required(name, inf),
		ExtractionMethod: c.method,
		Suggestions:      inf.Suggestions,
	}
	variable.AddFilter(filterNames...)

	c.vars[name] = variable
	c.order = append(c.order, name)
}

// result returns the variables in document order.
func (c *collector) result() []model.Variable {
	out := make([]model.Variable, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.vars[name])
	}
	return out
}

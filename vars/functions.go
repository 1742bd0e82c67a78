package vars

import "github.com/jmchacon/basic/basicerr"

// Function is a stored DEF FN: a single-letter-plus-optional-$ name, its
// bound parameter name, and the tokenized body expression.
type Function struct {
	Param    string
	Body     []byte
	IsString bool
}

// Functions holds the DEF FN table, keyed by canonical function name.
type Functions struct {
	table map[string]*Function
}

// NewFunctions returns an empty function table.
func NewFunctions() *Functions {
	return &Functions{table: map[string]*Function{}}
}

// Define stores or replaces a function definition.
func (f *Functions) Define(name, param string, body []byte, isString bool) {
	f.table[name] = &Function{Param: param, Body: body, IsString: isString}
}

// Lookup returns the function stored under name, or UndefinedFunction.
func (f *Functions) Lookup(name string) (*Function, error) {
	fn, ok := f.table[name]
	if !ok {
		return nil, basicerr.New(basicerr.UndefinedFunction)
	}
	return fn, nil
}

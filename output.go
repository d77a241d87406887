/*
Copyright © 2025 the GridClim authors.
This file is part of GridClim.

GridClim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GridClim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GridClim.  If not, see <http://www.gnu.org/licenses/>.
*/

package gridclim

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
)

// Outputter evaluates user-supplied expressions over the variables of a
// dataset to produce derived output variables.
type Outputter struct {
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter holder and adds a set of
// default output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'log(x)' which applies the natural logarithm.
//
// 'sqrt(x)' which applies the square root.
//
// 'abs(x)' which applies the absolute value.
//
// 'min(x, y)' and 'max(x, y)' which take the lesser and greater of two
// values.
//
// Each output variable is defined by an expression over the names of
// dataset variables, for example {"t2m_anom": "t2m - t2m_clim"}. Output
// variables may also reference other output variables; such references
// are replaced by their defining expressions.
func NewOutputter(outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"log": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'log', but needs 1", len(arg))
			}
			return math.Log(arg[0].(float64)), nil
		},
		"sqrt": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'sqrt', but needs 1", len(arg))
			}
			return math.Sqrt(arg[0].(float64)), nil
		},
		"abs": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'abs', but needs 1", len(arg))
			}
			return math.Abs(arg[0].(float64)), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return math.Min(arg[0].(float64), arg[1].(float64)), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("gridclim: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return math.Max(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := Outputter{
		outputVariables: make(map[string]string, len(outputVariables)),
		outputFunctions: defaultOutputFuncs,
	}
	for key, val := range outputVariables {
		o.outputVariables[key] = val
	}
	err := o.checkForDerivatives()
	return &o, err
}

// removeDuplicates removes all duplicated strings from a slice,
// returning a slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]string)
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = val
		}
	}
	return result
}

func checkPrefix(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return regexp.MatchString("[a-zA-Z0-9_]", string(s[0]))
}

func checkSuffix(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return regexp.MatchString("[a-zA-Z0-9_]", string(s[len(s)-1]))
}

// checkForDerivatives identifies the unique input variables that are
// required to calculate the requested output variables, replacing any
// user-defined output variable showing up in a subsequent expression by
// its corresponding user-defined expression.
func (o *Outputter) checkForDerivatives() error {
	o.modelVariables = make([]string, 0, len(o.outputVariables))
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return fmt.Errorf("gridclim: parsing output variable %s: %v", key, err)
		}
		uniqueVars := removeDuplicates(expression.Vars())
		o.modelVariables = append(o.modelVariables, uniqueVars...)
		// For each variable name identified in an output variable
		// expression, check if the variable is defined in terms of other
		// variables within a separate expression. If so, any instance of
		// the variable name is replaced by the expression that defines it.
		for _, uniqueVar := range uniqueVars {
			if o.outputVariables[uniqueVar] != "" && o.outputVariables[uniqueVar] != uniqueVar {
				// In order to verify that an instance of a variable name is
				// not part of a longer variable name, the text preceding and
				// following the variable name is analyzed. For example,
				// 'anom' is not a standalone variable in an expression if it
				// appears as 't2m_anom'.
				splitVal := strings.Split(val, uniqueVar)
				for i := 0; i < len(splitVal)-1; i++ {
					isSuffix, err := checkSuffix(splitVal[i])
					if err != nil {
						return fmt.Errorf("gridclim: output variable %s: %v", key, err)
					}
					isPrefix, err := checkPrefix(splitVal[i+1])
					if err != nil {
						return fmt.Errorf("gridclim: output variable %s: %v", key, err)
					}
					splitVal[i] = splitVal[i] + uniqueVar
					if !isSuffix && !isPrefix {
						splitVal[i] = strings.Replace(splitVal[i], uniqueVar, "("+o.outputVariables[uniqueVar]+")", -1)
					}
				}
				o.outputVariables[key] = strings.Join(splitVal, "")
				return o.checkForDerivatives()
			}
		}
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	// Variables defined by other expressions are outputs, not inputs.
	inputs := o.modelVariables[:0]
	for _, v := range o.modelVariables {
		if _, ok := o.outputVariables[v]; !ok {
			inputs = append(inputs, v)
		}
	}
	o.modelVariables = inputs
	return nil
}

// ModelVariables returns the dataset variables the output expressions
// require.
func (o *Outputter) ModelVariables() []string {
	return append([]string{}, o.modelVariables...)
}

// CheckVariables checks whether the input variables required to
// calculate the requested output variables are all present in the
// given list.
func (o *Outputter) CheckVariables(available ...string) error {
	have := make(map[string]struct{}, len(available))
	for _, v := range available {
		have[v] = struct{}{}
	}
	for _, v := range o.modelVariables {
		if _, ok := have[v]; !ok {
			return fmt.Errorf("gridclim: undefined variable name '%s'", v)
		}
	}
	return nil
}

// Output evaluates the output expressions element-wise over the
// variables of ds, returning a dataset of the derived variables. All
// variables referenced by an expression must have the same axes and
// coordinates.
func (o *Outputter) Output(ds *Dataset) (*Dataset, error) {
	if err := o.CheckVariables(ds.VariableNames()...); err != nil {
		return nil, err
	}
	out := NewDataset()
	for k, v := range ds.Attrs {
		out.Attrs[k] = v
	}
	for _, name := range sortedKeys(o.outputVariables) {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(o.outputVariables[name], o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("gridclim: parsing output variable %s: %v", name, err)
		}
		vars := removeDuplicates(expression.Vars())
		if len(vars) == 0 {
			return nil, fmt.Errorf("gridclim: output variable %s references no dataset variables", name)
		}
		inputs := make([]*DataArray, len(vars))
		for i, v := range vars {
			da, err := ds.Variable(v)
			if err != nil {
				return nil, err
			}
			inputs[i] = da
			if i > 0 {
				if err := alignCheck(inputs[0], da); err != nil {
					return nil, fmt.Errorf("gridclim: output variable %s: %v", name, err)
				}
			}
		}
		result := inputs[0].Copy()
		result.Name = name
		result.Attrs = map[string]string{"expression": o.outputVariables[name]}
		params := make(map[string]interface{}, len(vars))
		for j := range result.Data.Elements {
			for i, v := range vars {
				params[v] = inputs[i].Data.Elements[j]
			}
			r, err := expression.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("gridclim: evaluating output variable %s: %v", name, err)
			}
			rf, ok := r.(float64)
			if !ok {
				return nil, fmt.Errorf("gridclim: output variable %s evaluated to %T; want float64", name, r)
			}
			result.Data.Elements[j] = rf
		}
		if err := out.AddVariable(result); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// alignCheck verifies that a and b have identical axes and coordinates.
func alignCheck(a, b *DataArray) error {
	if len(a.Dims) != len(b.Dims) {
		return fmt.Errorf("variables %s and %s have different ranks", a.Name, b.Name)
	}
	for i, dim := range a.Dims {
		if b.Dims[i] != dim {
			return fmt.Errorf("variables %s and %s have different axes", a.Name, b.Name)
		}
		if !a.Coords[dim].equal(b.Coords[dim]) {
			return fmt.Errorf("variables %s and %s are not aligned on dim %s", a.Name, b.Name, dim)
		}
	}
	return nil
}

// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/query"
)

// XML Schema datatypes used for native literals.
const (
	xsdNS       = "http://www.w3.org/2001/XMLSchema#"
	XSDString   = quad.IRI(xsdNS + "string")
	XSDInteger  = quad.IRI(xsdNS + "integer")
	XSDDouble   = quad.IRI(xsdNS + "double")
	XSDBoolean  = quad.IRI(xsdNS + "boolean")
	XSDDateTime = quad.IRI(xsdNS + "dateTime")
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

// Quote renders s as a quoted SPARQL string literal.
func Quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

// Lexical returns the lexical form and datatype of a native literal.
// Datatype is empty for plain and language-tagged strings.
func Lexical(v quad.Value) (lex string, dt quad.IRI, ok bool) {
	switch v := v.(type) {
	case quad.String:
		return string(v), "", true
	case quad.LangString:
		return string(v.Value), "", true
	case quad.TypedString:
		return string(v.Value), v.Type, true
	case quad.Int:
		return strconv.FormatInt(int64(v), 10), XSDInteger, true
	case quad.Float:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), XSDDouble, true
	case quad.Bool:
		return strconv.FormatBool(bool(v)), XSDBoolean, true
	case quad.Time:
		return time.Time(v).Format(time.RFC3339Nano), XSDDateTime, true
	}
	return "", "", false
}

// FormatTerm renders a term in SPARQL syntax. Go values that are not
// quad.Value are classified with query.AsTerm first.
//
//	FormatTerm("?s")                  // ?s
//	FormatTerm("http://ex.org/a")     // <http://ex.org/a>
//	FormatTerm("John")                // "John"
//	FormatTerm(quad.BNode("b1"))      // _:b1
//	FormatTerm(5)                     // "5"^^<http://www.w3.org/2001/XMLSchema#integer>
func FormatTerm(v interface{}) (string, error) {
	t := query.AsTerm(v)
	if err := query.CheckTerm(t); err != nil {
		return "", err
	}
	switch t := t.(type) {
	case nil:
		return "", fmt.Errorf("%w: nil term", query.ErrInvalid)
	case query.Var:
		return "?" + string(t), nil
	case quad.IRI:
		return "<" + string(t) + ">", nil
	case quad.BNode:
		return "_:" + string(t), nil
	case quad.LangString:
		return Quote(string(t.Value)) + "@" + t.Lang, nil
	}
	lex, dt, ok := Lexical(t)
	if !ok {
		return "", fmt.Errorf("%w: cannot render %v (%T)", query.ErrInvalid, v, v)
	}
	if dt == "" {
		return Quote(lex), nil
	}
	return Quote(lex) + "^^<" + string(dt) + ">", nil
}

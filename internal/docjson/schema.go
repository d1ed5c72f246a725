// Package docjson models the documentation JSON export: a forest of pages,
// each optionally carrying a typed body payload.
package docjson

import "encoding/json"

// Page is one node of the exported documentation tree.
type Page struct {
	Title       string `json:"title"`
	Route       string `json:"route"`
	Description string `json:"description"`
	Part        string `json:"part"`
	Body        *Body  `json:"body"`
	Children    []Page `json:"children"`
}

// Body is the tagged union attached to a page. Content is kept raw and
// decoded per kind by the renderer; unknown kinds degrade to empty output.
type Body struct {
	Kind    string          `json:"kind"`
	Content json.RawMessage `json:"content"`
}

// Body kinds understood by the renderer.
const (
	KindHTML     = "html"
	KindCategory = "category"
	KindSymbols  = "symbols"
	KindFunc     = "func"
	KindGroup    = "group"
	KindType     = "type"
)

// Category payload: prose details plus an optional item listing.
type Category struct {
	Details json.RawMessage `json:"details"`
	Items   []CategoryItem  `json:"items"`
}

// CategoryItem is one row of a category's definitions table.
type CategoryItem struct {
	Name     string `json:"name"`
	Route    string `json:"route"`
	Oneliner string `json:"oneliner"`
}

// Symbols payload: prose details plus a symbol table.
type Symbols struct {
	Details json.RawMessage `json:"details"`
	List    []Symbol        `json:"list"`
}

// Symbol is one symbol-table row. Value falls back to Codepoint, MathClass
// to MathShorthand, when absent.
type Symbol struct {
	Name          string          `json:"name"`
	Value         string          `json:"value"`
	Codepoint     json.RawMessage `json:"codepoint"`
	MathClass     string          `json:"mathClass"`
	MathShorthand string          `json:"mathShorthand"`
}

// Func payload: a documented function, possibly with a nested scope of
// sub-definitions.
type Func struct {
	Name    string          `json:"name"`
	Path    []string        `json:"path"`
	Details json.RawMessage `json:"details"`
	Params  []Param         `json:"params"`
	Returns []string        `json:"returns"`
	Example json.RawMessage `json:"example"`
	Scope   []Func          `json:"scope"`
}

// Param is one function parameter.
type Param struct {
	Name    string          `json:"name"`
	Named   bool            `json:"named"`
	Types   []string        `json:"types"`
	Details json.RawMessage `json:"details"`
	Default json.RawMessage `json:"default"`
}

// Group payload: prose details plus a set of functions.
type Group struct {
	Details   json.RawMessage `json:"details"`
	Functions []Func          `json:"functions"`
}

// Type payload: a documented type with optional constructor and methods.
type Type struct {
	Details     json.RawMessage `json:"details"`
	Constructor *Func           `json:"constructor"`
	Scope       []Func          `json:"scope"`
}

// Example is the structured form of a func example; its Body field holds the
// HTML fragment to render.
type Example struct {
	Body string `json:"body"`
}

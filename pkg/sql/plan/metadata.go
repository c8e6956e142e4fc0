// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package plan

import (
	"strconv"
	"strings"
)

// Well-known metadata keys. Operators carry only the keys that apply to them;
// rendering degrades to omission for any key that is absent.
const (
	MetaArguments        = "arguments"
	MetaCondition        = "condition"
	MetaJoinType         = "joinType"
	MetaBuildSide        = "buildSide"
	MetaLeftKeys         = "leftKeys"
	MetaRightKeys        = "rightKeys"
	MetaGroupingKeys     = "keys"
	MetaFunctions        = "functions"
	MetaProjections      = "projections"
	MetaSortOrder        = "sortOrder"
	MetaPartitioning     = "partitioning"
	MetaTable            = "table"
	MetaFormat           = "format"
	MetaLocation         = "location"
	MetaPartitionFilters = "partitionFilters"
	MetaDataFilters      = "dataFilters"
	MetaPushedFilters    = "pushedFilters"
	MetaReadSchema       = "readSchema"
	MetaOptions          = "options"
	MetaStageID          = "stageId"
	MetaStrategy         = "strategy"
)

// Value is one structured metadata value. The variant set is closed; rendering
// code switches over it exhaustively.
type Value interface {
	valueNode()
}

// StringValue is free-form text, typically an expression rendered by the plan
// producer's expression formatter.
type StringValue string

// StringsValue is an ordered list of text fragments (projection lists, pushed
// filters, and the like).
type StringsValue []string

// AttrsValue is an ordered attribute list.
type AttrsValue []AttrRef

// IntValue is a numeric argument.
type IntValue int64

// OptionsValue is a configuration map attached to an operator. Its values may
// be sensitive and must pass through an OptionRedactor before rendering.
type OptionsValue struct {
	Options *Options
}

// SubqueryValue is an expression that embeds another plan. ExprText is the
// textual form of the hosting expression; Root is the embedded plan.
type SubqueryValue struct {
	ExprText string
	Root     *Node
}

func (StringValue) valueNode()   {}
func (StringsValue) valueNode()  {}
func (AttrsValue) valueNode()    {}
func (IntValue) valueNode()      {}
func (OptionsValue) valueNode()  {}
func (SubqueryValue) valueNode() {}

// Field is one ordered metadata entry.
type Field struct {
	Key   string
	Value Value
}

// Metadata is the ordered operator-specific metadata of a Node. The zero
// value is empty and usable.
type Metadata struct {
	fields []Field
}

// MakeMetadata builds metadata from fields, preserving order.
func MakeMetadata(fields ...Field) Metadata {
	return Metadata{fields: fields}
}

// Fields returns the entries in insertion order. The returned slice must not
// be modified.
func (md Metadata) Fields() []Field {
	return md.fields
}

// Lookup returns the value stored under key.
func (md Metadata) Lookup(key string) (Value, bool) {
	for _, f := range md.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Str returns the textual form of the value under key. Subquery-valued
// entries contribute their hosting expression text.
func (md Metadata) Str(key string) (string, bool) {
	v, ok := md.Lookup(key)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case StringValue:
		return string(t), true
	case StringsValue:
		return strings.Join(t, ", "), true
	case IntValue:
		return strconv.FormatInt(int64(t), 10), true
	case SubqueryValue:
		return t.ExprText, true
	case AttrsValue:
		return FormatAttrs(t), true
	}
	return "", false
}

// Attrs returns the attribute list under key.
func (md Metadata) Attrs(key string) ([]AttrRef, bool) {
	v, ok := md.Lookup(key)
	if !ok {
		return nil, false
	}
	a, ok := v.(AttrsValue)
	return a, ok
}

// Options returns the options map under key.
func (md Metadata) Options(key string) (*Options, bool) {
	v, ok := md.Lookup(key)
	if !ok {
		return nil, false
	}
	o, ok := v.(OptionsValue)
	if !ok || o.Options == nil {
		return nil, false
	}
	return o.Options, true
}

// Int returns the numeric value under key.
func (md Metadata) Int(key string) (int64, bool) {
	v, ok := md.Lookup(key)
	if !ok {
		return 0, false
	}
	i, ok := v.(IntValue)
	return int64(i), ok
}

// Subqueries returns every subquery-valued entry in field order.
func (md Metadata) Subqueries() []SubqueryValue {
	var subs []SubqueryValue
	for _, f := range md.fields {
		if s, ok := f.Value.(SubqueryValue); ok {
			subs = append(subs, s)
		}
	}
	return subs
}

// OptionRedactor transforms one option entry before it is rendered. It is the
// single point through which option values reach any output mode.
type OptionRedactor func(key, value string) string

// Options is an ordered string-to-string configuration map. When constructed
// case-insensitive, lookups fold key casing but the original spelling is kept
// for display.
type Options struct {
	keys       []string
	vals       map[string]string
	foldedKeys bool
}

// NewOptions returns an empty case-sensitive options map.
func NewOptions() *Options {
	return &Options{vals: make(map[string]string)}
}

// NewCaseInsensitiveOptions returns an empty options map whose lookups fold
// key casing.
func NewCaseInsensitiveOptions() *Options {
	return &Options{vals: make(map[string]string), foldedKeys: true}
}

func (o *Options) lookupKey(key string) string {
	if o.foldedKeys {
		return strings.ToLower(key)
	}
	return key
}

// Set stores an entry, keeping first-insertion order on overwrite.
func (o *Options) Set(key, value string) *Options {
	lk := o.lookupKey(key)
	if _, ok := o.vals[lk]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[lk] = value
	return o
}

// Get returns the value stored under key.
func (o *Options) Get(key string) (string, bool) {
	v, ok := o.vals[o.lookupKey(key)]
	return v, ok
}

// Len returns the number of entries.
func (o *Options) Len() int {
	return len(o.keys)
}

// Each visits entries in insertion order, with keys in their original
// spelling.
func (o *Options) Each(fn func(key, value string)) {
	for _, k := range o.keys {
		fn(k, o.vals[o.lookupKey(k)])
	}
}

// Format renders the map as "[k1=v1, k2=v2]" with every value passed through
// red. A nil redactor renders values verbatim and must only be used on maps
// known to be free of sensitive entries.
func (o *Options) Format(red OptionRedactor) string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	o.Each(func(k, v string) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		if red != nil {
			v = red(k, v)
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(v)
	})
	sb.WriteByte(']')
	return sb.String()
}

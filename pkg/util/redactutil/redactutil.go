// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package redactutil filters sensitive configuration values out of
// diagnostic output. Matching is by key only: a value is replaced with a
// fixed placeholder when its key matches the deny-list, and passes through
// verbatim otherwise.
package redactutil

import "strings"

// Placeholder is the replacement text for a redacted value.
const Placeholder = "*********(redacted)"

// DefaultDenyList contains the key fragments treated as sensitive when no
// explicit deny-list is configured.
var DefaultDenyList = []string{"password", "token"}

// Redactor replaces values of sensitive option entries. The zero value uses
// DefaultDenyList and Placeholder.
type Redactor struct {
	denyList    []string
	placeholder string
}

// Make builds a Redactor. Deny-list entries match case-insensitively as key
// substrings. A nil denyList selects DefaultDenyList; an empty placeholder
// selects Placeholder.
func Make(denyList []string, placeholder string) Redactor {
	var folded []string
	for _, d := range denyList {
		folded = append(folded, strings.ToLower(d))
	}
	return Redactor{denyList: folded, placeholder: placeholder}
}

func (r Redactor) entries() []string {
	if r.denyList == nil {
		return DefaultDenyList
	}
	return r.denyList
}

func (r Redactor) replacement() string {
	if r.placeholder == "" {
		return Placeholder
	}
	return r.placeholder
}

// Sensitive reports whether the key names a value that must not appear in
// output. The match ignores the key's casing, including casing normalized
// away by case-insensitive-keyed maps.
func (r Redactor) Sensitive(key string) bool {
	folded := strings.ToLower(key)
	for _, d := range r.entries() {
		if strings.Contains(folded, d) {
			return true
		}
	}
	return false
}

// Value returns the value to render for an option entry: the placeholder for
// a sensitive key, the original value otherwise.
func (r Redactor) Value(key, value string) string {
	if r.Sensitive(key) {
		return r.replacement()
	}
	return value
}

// RedactMap returns a copy of kvs with sensitive values replaced, preserving
// entry order. The input is never modified.
func (r Redactor) RedactMap(kvs [][2]string) [][2]string {
	out := make([][2]string, len(kvs))
	for i, kv := range kvs {
		out[i] = [2]string{kv[0], r.Value(kv[0], kv[1])}
	}
	return out
}

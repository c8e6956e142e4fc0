// Copyright 2025 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package explain_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/emberdb/ember/pkg/sql/explain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		name string
		mode explain.Mode
	}{
		{"simple", explain.ModeSimple},
		{"SIMPLE", explain.ModeSimple},
		{"Extended", explain.ModeExtended},
		{"codegen", explain.ModeCodegen},
		{"COST", explain.ModeCost},
		{"fOrMaTtEd", explain.ModeFormatted},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := explain.ParseMode(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.mode, m)
		})
	}
}

func TestModeRedactability(t *testing.T) {
	// Mode names are safe and print unmarked.
	assert.Equal(t, redact.RedactableString("formatted"), redact.Sprint(explain.ModeFormatted))

	// The offending name in a parse error is caller input and must not
	// survive redaction.
	_, err := explain.ParseMode("hunter2")
	require.Error(t, err)
	printed := redact.Sprint(err)
	assert.Contains(t, string(printed), "hunter2")
	assert.NotContains(t, string(printed.Redact()), "hunter2")
}

func TestParseModeUnknown(t *testing.T) {
	for _, name := range []string{"", "verbose", "simple ", "forma"} {
		t.Run(name, func(t *testing.T) {
			_, err := explain.ParseMode(name)
			require.Error(t, err)
			assert.True(t, errors.Is(err, explain.ErrUnknownMode))
			if name != "" {
				// The offending name is surfaced verbatim.
				assert.Contains(t, err.Error(), name)
			}
		})
	}
}

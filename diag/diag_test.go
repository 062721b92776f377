// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package diag

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListErr(t *testing.T) {
	var l List
	assert.NoError(t, l.Err())

	l.Warnf(KindFrontend, "unused variable %q", "x")
	assert.NoError(t, l.Err(), "warnings alone are not failures")

	l.Errorf(KindEntryPoint, "graphics pipeline is not valid")
	err := l.Err()
	require.Error(t, err)

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.True(t, de.Has(KindEntryPoint))
	assert.False(t, de.Has(KindFrontend))
	assert.Equal(t, "entry-point error: graphics pipeline is not valid", err.Error())
	assert.Len(t, Messages(err), 2)
}

func TestListTextSplitsLines(t *testing.T) {
	var l List
	l.Text(KindFrontend, SeverityError, "first\r\n\n  \nsecond\n")
	require.Equal(t, 2, l.Len())
	assert.Equal(t, "first", l.Messages()[0].Text)
	assert.Equal(t, "second", l.Messages()[1].Text)
}

func TestListAddFlattens(t *testing.T) {
	var inner List
	inner.Errorf(KindReflection, "a")
	inner.Errorf(KindReflection, "b")

	var outer List
	outer.Add(KindCodegen, fmt.Errorf("wrap: %w", inner.Err()))
	outer.Add(KindCodegen, errors.New("plain"))
	outer.Add(KindCodegen, nil)

	msgs := outer.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, KindReflection, msgs[0].Kind)
	assert.Equal(t, KindCodegen, msgs[2].Kind)
	assert.Equal(t, "plain", msgs[2].Text)
}

func TestErrorSummary(t *testing.T) {
	var l List
	l.Errorf(KindFrontend, "one")
	l.Errorf(KindFrontend, "two")
	l.Errorf(KindFrontend, "three")
	assert.Equal(t, "frontend error: one (and 2 more errors)", l.Err().Error())

	l.Reset()
	assert.Equal(t, 0, l.Len())
	assert.NoError(t, l.Err())
}

func TestMessagesPlainError(t *testing.T) {
	assert.Nil(t, Messages(nil))
	assert.Equal(t, []string{"boom"}, Messages(errors.New("boom")))
}

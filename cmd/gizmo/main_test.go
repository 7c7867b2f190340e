package main

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"gizmo/internal/domain"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	require.Contains(t, out, "lookup")
	require.Contains(t, out, "deep")
	require.Contains(t, out, "--verbose")
}

func TestCommandsRequireOneTarget(t *testing.T) {
	for _, name := range []string{"lookup", "deep"} {
		_, err := execute(t, name)
		require.Error(t, err, name)

		_, err = execute(t, name, "a", "b")
		require.Error(t, err, name)
	}
}

func TestLookupWithoutAPIKeyFails(t *testing.T) {
	t.Setenv("BALLCHASING_API_KEY", "")

	_, err := execute(t, "lookup", "Squishy")
	require.ErrorContains(t, err, "BALLCHASING_API_KEY")
}

func TestExplainMarksNotFound(t *testing.T) {
	err := explain(fmt.Errorf("%q: %w", "Nobody", domain.ErrNotFound))
	require.ErrorIs(t, err, errNotFound)
	require.ErrorIs(t, err, domain.ErrNotFound)

	other := errors.New("boom")
	require.Equal(t, other, explain(other))
}

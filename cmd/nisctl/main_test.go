package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{{"migrate"}, {"import", "timetable"}, {"import", "duty"}, {"history", "reset"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestHistoryResetRequiresConfirmation(t *testing.T) {
	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"history", "reset"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestImportRequiresFile(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"import", "timetable"})
	assert.Error(t, root.Execute())

	root = newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"import", "duty", "/nonexistent/duty.xlsx"})
	assert.Error(t, root.Execute())
}

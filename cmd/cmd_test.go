package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"accounting-sync/core/config"
	"accounting-sync/feature/migration"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, exitCode(errors.New("boom")))
	assert.Equal(t, 2, exitCode(&ExitError{Code: 2}))
	assert.Equal(t, 2, exitCode(fmt.Errorf("reconcile: %w", &ExitError{Code: 2})))
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit status 2", (&ExitError{Code: 2}).Error())

	cause := errors.New("drift")
	err := &ExitError{Code: 2, Err: cause}
	assert.Equal(t, "drift", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfirmDestructiveAction(t *testing.T) {
	var out bytes.Buffer

	assert.True(t, confirmDestructiveAction(strings.NewReader(""), &out, true, "Reset?"))
	assert.Contains(t, out.String(), "--yes")

	out.Reset()
	assert.True(t, confirmDestructiveAction(strings.NewReader("yes\n"), &out, false, "Reset?"))
	assert.Contains(t, out.String(), "Reset?")

	assert.True(t, confirmDestructiveAction(strings.NewReader("yes"), &out, false, "Reset?"))
	assert.False(t, confirmDestructiveAction(strings.NewReader("y\n"), &out, false, "Reset?"))
	assert.False(t, confirmDestructiveAction(strings.NewReader(""), &out, false, "Reset?"))
}

func TestSnapshotLocation(t *testing.T) {
	a := &app{cfg: &config.Config{Migration: migration.Config{
		SnapshotPath:   "data/store.json",
		SnapshotObject: "snapshots/store.json",
	}}}

	path, object := a.snapshotLocation("", "")
	assert.Equal(t, "data/store.json", path)
	assert.Equal(t, "snapshots/store.json", object)

	path, object = a.snapshotLocation("other.json", "")
	assert.Equal(t, "other.json", path)
	assert.Empty(t, object)

	path, object = a.snapshotLocation("other.json", "snapshots/x.json")
	assert.Empty(t, path)
	assert.Equal(t, "snapshots/x.json", object)
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range RootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"migrate", "reconcile", "reset", "schema", "start"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, migrateCmd.Flags().Lookup("fail-on-drop"))
	assert.Equal(t, "true", migrateCmd.Flags().Lookup("auto-migrate").DefValue)
}

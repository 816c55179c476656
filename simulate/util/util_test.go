package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDump(t *testing.T) {
	s := Dump(struct{ ID string }{ID: "pipe"})
	require.NotContains(t, s, "\n")
	require.Contains(t, s, "pipe")
}

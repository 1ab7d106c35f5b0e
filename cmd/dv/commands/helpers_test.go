package commands

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustReadAll(t *testing.T, r io.ReadCloser) []byte {
	t.Helper()
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func intp(n int) *int { return &n }

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveFromFlags(t *testing.T) {
	out, err := run(t, "--numbers", "2,3,5", "--target", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "2 + 3 + 5 = 10")
	assert.Contains(t, out, "distance 0")
}

func TestSolveJSON(t *testing.T) {
	out, err := run(t, "--numbers", "4,9", "--target", "5", "--sqrt", "1", "--json")
	require.NoError(t, err)

	var got struct {
		Best struct {
			Expression string
			Distance   float64
		}
		Complete bool
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "9 ÷ √4", got.Best.Expression)
	assert.Equal(t, 0.5, got.Best.Distance)
	assert.True(t, got.Complete)
}

func TestSolveRejectsBadFlags(t *testing.T) {
	_, err := run(t, "--target", "3")
	assert.Error(t, err)
	_, err = run(t, "--numbers", "1,2", "--disable", "multiply")
	assert.Error(t, err)
	_, err = run(t, "--numbers", "12")
	assert.Error(t, err)
}

func TestSolveInfeasible(t *testing.T) {
	out, err := run(t, "--numbers", "4", "--target", "4", "--multiply", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "no feasible expression")
}

func TestDealIsReproducible(t *testing.T) {
	a, err := run(t, "deal", "--seed", "42")
	require.NoError(t, err)
	b, err := run(t, "deal", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "seed 42"))
	assert.Contains(t, a, "opponent")

	c, err := run(t, "deal", "--date", "2026-03-01", "--salt", "s")
	require.NoError(t, err)
	d, err := run(t, "deal", "--date", "2026-03-01", "--salt", "s")
	require.NoError(t, err)
	assert.Equal(t, c, d)

	_, err = run(t, "deal", "--date", "March 1st")
	assert.Error(t, err)
}

func TestDealCustomDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("numbers: 2\ncopies: 1\ntarget_min: 7\ntarget_max: 7\n"), 0o644))

	out, err := run(t, "deal", "--seed", "1", "--deck", path)
	require.NoError(t, err)
	assert.Contains(t, out, "target 7")
}

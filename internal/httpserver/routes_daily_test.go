package httpserver

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailySessionsRollOver(t *testing.T) {
	d := &dailyServer{sessions: make(map[string]string)}

	d.remember("alice", "2026-03-01", "r1")
	d.remember("bob", "2026-03-01", "r2")
	id, ok := d.session("alice", "2026-03-01")
	require.True(t, ok)
	assert.Equal(t, "r1", id)

	d.remember("alice", "2026-03-02", "r3")
	assert.Len(t, d.sessions, 1, "previous day's sessions are dropped")
	_, ok = d.session("bob", "2026-03-01")
	assert.False(t, ok)
	_, ok = d.session("bob", "2026-03-02")
	assert.False(t, ok)

	d.forget("alice", "2026-03-02")
	assert.Empty(t, d.sessions)
}

func TestForgetIgnoresOtherDates(t *testing.T) {
	d := &dailyServer{sessions: make(map[string]string)}
	d.remember("alice", "2026-03-02", "r1")
	d.forget("alice", "2026-03-01")

	id, ok := d.session("alice", "2026-03-02")
	require.True(t, ok)
	assert.Equal(t, "r1", id)
}

func TestRegisterValidations(t *testing.T) {
	v := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, registerValidations(v))

	assert.NoError(t, v.Var("ada_l", "username"))
	assert.Error(t, v.Var("a!b", "username"))
}

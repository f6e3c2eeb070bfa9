package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ginkit/internal/audit"
	"ginkit/internal/config"
)

func TestNewRecorder(t *testing.T) {
	recorder, err := newRecorder(config.Audit{
		CreateTypes: []string{"Order", "Customer"},
		DeleteTypes: []string{"Order"},
	})
	require.NoError(t, err)

	assert.True(t, recorder.Allows(audit.ActionCreate, "Customer"))
	assert.False(t, recorder.Allows(audit.ActionCreate, "User"))
	assert.True(t, recorder.Allows(audit.ActionUpdate, "User"), "empty list admits every type")
	assert.False(t, recorder.Allows(audit.ActionDelete, "Customer"))
	assert.Equal(t, []string{"Order"}, recorder.AllowList(audit.ActionDelete))
}

func TestDBLogSupported(t *testing.T) {
	assert.True(t, dbLogSupported("postgres"))
	assert.False(t, dbLogSupported("sqlite"))
}

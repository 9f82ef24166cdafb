package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerCreateAndLoad(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour)

	sess, err := m.Create(context.Background(), "admin", "jwt-abc")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "jwt-abc", sess.Token)

	loaded, err := m.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "admin", loaded.Username)
	assert.Equal(t, "jwt-abc", loaded.Token)
}

func TestManagerClear(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour)
	sess, err := m.Create(context.Background(), "admin", "jwt-abc")
	require.NoError(t, err)

	require.NoError(t, m.Clear(context.Background(), sess.ID))

	loaded, err := m.Load(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// clearing twice is not an error
	assert.NoError(t, m.Clear(context.Background(), sess.ID))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	sess := &Session{ID: "s1", Username: "admin", Token: "jwt"}
	require.NoError(t, store.Put(context.Background(), sess, -time.Second))

	loaded, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "expired sessions read as absent")
}

func TestLoadUnknownID(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour)
	loaded, err := m.Load(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestTokenNeverSerialized(t *testing.T) {
	// The wire form of a session must not leak the bearer token.
	sess := Session{ID: "s1", Username: "admin", Token: "jwt-secret", CreatedAt: time.Now()}
	out, err := json.Marshal(sess)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "jwt-secret")
	assert.Contains(t, string(out), "admin")
}

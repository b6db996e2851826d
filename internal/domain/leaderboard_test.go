package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("walls")
	require.NoError(t, err)
	assert.Equal(t, ModeWalls, mode)

	mode, err = ParseMode("pass-through")
	require.NoError(t, err)
	assert.Equal(t, ModePassThrough, mode)

	for _, bad := range []string{"", "Walls", "diagonal", "passthrough"} {
		_, err := ParseMode(bad)
		assert.ErrorIs(t, err, ErrInvalidMode, "mode %q", bad)
	}
}

func TestLeaderboardEntryJSON(t *testing.T) {
	entry := LeaderboardEntry{
		ID:        "e1",
		UserID:    "u1",
		Username:  "alice",
		Score:     100,
		Mode:      ModeWalls,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "alice", out["username"])
	assert.NotContains(t, out, "userId")
	assert.NotContains(t, out, "UserID")
}

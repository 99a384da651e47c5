package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vampyr-backend/models"
)

func intPtr(v int) *int { return &v }

func TestGameLoginCreatesAndFinds(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	player, isNew, err := svc.GameLogin("rex")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "rex", player.Nickname)
	assert.Equal(t, 1, player.Level)

	again, isNew, err := svc.GameLogin("rex")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, player.ID, again.ID)
}

func TestGameLoginNicknameIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	_, isNew, err := svc.GameLogin("Rex")
	require.NoError(t, err)
	assert.True(t, isNew)

	_, isNew, err = svc.GameLogin("rex")
	require.NoError(t, err)
	assert.True(t, isNew, "nicknames differing only by case are distinct players")
}

func TestUpdateProgressClampsValues(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	_, _, err := svc.GameLogin("rex")
	require.NoError(t, err)

	player, err := svc.UpdateProgress("rex", ProgressUpdate{
		Level:           intPtr(99),
		EnemiesDefeated: intPtr(42),
		Defeats:         intPtr(-5),
		PlayTimeSeconds: intPtr(3600),
	})
	require.NoError(t, err)
	assert.Equal(t, models.MaxLevel, player.Level)
	assert.Equal(t, models.MaxEnemiesDefeated, player.EnemiesDefeated)
	assert.Equal(t, 0, player.Defeats)
	assert.Equal(t, 3600, player.PlayTimeSeconds)

	player, err = svc.UpdateProgress("rex", ProgressUpdate{Level: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, 1, player.Level)
	assert.Equal(t, 3600, player.PlayTimeSeconds, "untouched fields keep their values")
}

func TestUpdateProgressUnknownPlayer(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	_, err := svc.UpdateProgress("ghost", ProgressUpdate{Level: intPtr(2)})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestGlobalStats(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	owner := "u1"
	players := []models.Player{
		{Nickname: "rex", Level: 3, EnemiesDefeated: 6, PlayTimeSeconds: 500, UserID: &owner},
		{Nickname: "kyo", Level: 2, EnemiesDefeated: 3, Defeats: 2, PlayTimeSeconds: 200},
		{Nickname: "iori", Level: 1, EnemiesDefeated: 1, PlayTimeSeconds: 100},
	}
	for i := range players {
		require.NoError(t, db.Create(&players[i]).Error)
	}

	stats, err := svc.GetGlobalStats()
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalPlayers)
	assert.EqualValues(t, 1, stats.LinkedPlayers)
	assert.EqualValues(t, 2, stats.UnlinkedPlayers)
	assert.EqualValues(t, 10, stats.TotalEnemiesDefeated)
	assert.EqualValues(t, 2, stats.TotalDefeats)
	assert.EqualValues(t, 800, stats.TotalPlayTimeSeconds)
	assert.InDelta(t, 2.0, stats.AverageLevel, 0.001)

	assert.Equal(t, "rex", stats.TopLevelNickname)
	assert.Equal(t, 3, stats.TopLevel)
	assert.Equal(t, "rex", stats.TopKillsNickname)
	assert.Equal(t, "rex", stats.TopPlayTimeNickname)

	assert.EqualValues(t, 1, stats.LevelDistribution[1])
	assert.EqualValues(t, 1, stats.LevelDistribution[2])
	assert.EqualValues(t, 1, stats.LevelDistribution[3])
}

func TestGlobalStatsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlayerService(db)

	stats, err := svc.GetGlobalStats()
	require.NoError(t, err)
	assert.EqualValues(t, 0, stats.TotalPlayers)
	assert.Zero(t, stats.AverageLevel)
}

package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scavnger-backend/internal/models"
	"scavnger-backend/internal/pipeline"
)

func registerTestConnection(t *testing.T, svc *PushService, id, address string) *Connection {
	t.Helper()
	conn := &Connection{
		ID:          id,
		UserAddress: address,
		Send:        make(chan []byte, 8),
		LastPing:    time.Now(),
	}
	svc.register <- conn
	return conn
}

func receivePush(t *testing.T, conn *Connection) PushMessage {
	t.Helper()
	select {
	case payload := <-conn.Send:
		var msg PushMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no message pushed to the connection")
		return PushMessage{}
	}
}

func TestPushCheckinStageCarriesChallengeID(t *testing.T) {
	svc := NewPushService()
	conn := registerTestConnection(t, svc, "conn-1", testWallet)

	svc.PushCheckinStage(testWallet, 42, pipeline.StageRejected, "photo is too blurry")

	msg := receivePush(t, conn)
	assert.Equal(t, "checkin_stage_update", msg.Type)
	assert.Equal(t, testWallet, msg.UserAddress)

	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), data["challenge_id"])
	assert.Equal(t, string(pipeline.StageRejected), data["stage"])
	assert.Equal(t, "photo is too blurry", data["detail"])
}

func TestReviewRejectionPushesTaskChallengeID(t *testing.T) {
	reviews := newMemReviewRepo()
	checkins := newMemCheckinRepo()
	push := NewPushService()
	svc := NewReviewService(reviews, checkins, newMemChallengeRepo(), nil, push, nil)

	record := &models.CheckinRecord{
		ID:          "checkin-7",
		ChallengeID: 17,
		UserAddress: testWallet,
		Stage:       string(pipeline.StageEncoded),
	}
	require.NoError(t, checkins.Create(context.Background(), record))

	task, err := svc.Enqueue(context.Background(), record)
	require.NoError(t, err)

	conn := registerTestConnection(t, push, "conn-2", testWallet)

	_, result, err := svc.Decide(context.Background(), task.ID, false, "operator", "not a real gym")
	require.NoError(t, err)
	assert.Nil(t, result)

	msg := receivePush(t, conn)
	data, ok := msg.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(17), data["challenge_id"], "the push names the task's challenge")
	assert.Equal(t, string(pipeline.StageRejected), data["stage"])
}

package events

import (
	"encoding/json"
	"time"
)

// SnapshotSavedMessage announces that a user's snapshot was persisted.
// It carries identifiers only; a consumer fetches the blob itself.
type SnapshotSavedMessage struct {
	UserID    string    `json:"user_id"`
	SavedAt   time.Time `json:"saved_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSnapshotSavedMessage(userID string, savedAt time.Time) *SnapshotSavedMessage {
	return &SnapshotSavedMessage{
		UserID:    userID,
		SavedAt:   savedAt,
		Timestamp: time.Now(),
	}
}

func (m *SnapshotSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func SnapshotSavedMessageFromJSON(data []byte) (*SnapshotSavedMessage, error) {
	var msg SnapshotSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

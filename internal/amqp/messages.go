package amqp

import (
	"encoding/json"
	"time"
)

// Operations carried by a sync message. The worker fetches the full
// commission from the local database, so the message stays lightweight.
const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// CommissionSyncMessage tells the sync worker that a commission changed
// locally and the remote copy needs to catch up.
type CommissionSyncMessage struct {
	CommissionID string    `json:"commission_id"`
	Op           string    `json:"op"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewCommissionSyncMessage(commissionID, op string) *CommissionSyncMessage {
	return &CommissionSyncMessage{
		CommissionID: commissionID,
		Op:           op,
		Timestamp:    time.Now(),
	}
}

func (m *CommissionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func CommissionSyncMessageFromJSON(data []byte) (*CommissionSyncMessage, error) {
	var msg CommissionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncOp tells the worker whether to write or clear the journal row.
type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

func (o SyncOp) IsValid() bool {
	return o == OpUpsert || o == OpDelete
}

// TransactionSyncMessage carries only the transaction id; the worker loads the
// current row from the store before mirroring it.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Op        SyncOp    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id string, op SyncOp) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON rejects messages without an id or with an
// unknown op.
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("sync message without id")
	}
	if !msg.Op.IsValid() {
		return nil, fmt.Errorf("unknown sync op %q", msg.Op)
	}
	return &msg, nil
}

// Package notification publishes completed transfers to the real-time
// messaging layer. Delivery is fire-and-forget: a lost event never unwinds
// a committed transfer.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"remit/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	// EventTransferCompleted is the type field of transfer events.
	EventTransferCompleted = "transfer.completed"

	// channelPrefix keys one pub/sub channel per involved account.
	channelPrefix = "transactions."

	publishTimeout = 5 * time.Second
)

// Event is the envelope published for every completed transfer.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// TransferCompletedEvent carries the committed record and both balances as
// they stood at commit time.
type TransferCompletedEvent struct {
	Transaction     *models.Transaction `json:"transaction"`
	SenderBalance   decimal.Decimal     `json:"sender_balance"`
	ReceiverBalance decimal.Decimal     `json:"receiver_balance"`
}

// Service fans completed transfers out over Redis pub/sub.
type Service struct {
	client *redis.Client
}

// NewService creates a new notification service.
func NewService(client *redis.Client) *Service {
	if client == nil {
		panic("redis client is required")
	}
	return &Service{client: client}
}

// TransferCompleted publishes the transfer to the sender's and the
// receiver's channels. It returns immediately; failures are logged by the
// background publisher.
func (s *Service) TransferCompleted(tx *models.Transaction, senderBalance, receiverBalance decimal.Decimal) {
	event := Event{
		Type:      EventTransferCompleted,
		Timestamp: time.Now().UTC(),
		Data: TransferCompletedEvent{
			Transaction:     tx,
			SenderBalance:   senderBalance,
			ReceiverBalance: receiverBalance,
		},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal transfer event %s: %v", tx.Reference, err)
		return
	}

	go s.publish(tx.Reference, payload, accountChannel(tx.SenderID), accountChannel(tx.ReceiverID))
}

func (s *Service) publish(reference string, payload []byte, channels ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	for _, channel := range channels {
		if err := s.client.Publish(ctx, channel, payload).Err(); err != nil {
			log.Printf("failed to publish transfer %s to %s: %v", reference, channel, err)
		}
	}
}

func accountChannel(accountID uint) string {
	return fmt.Sprintf("%s%d", channelPrefix, accountID)
}

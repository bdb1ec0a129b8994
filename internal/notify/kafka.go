package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

const (
	kindNewRequest = "relationship.request"
	kindAccepted   = "relationship.accepted"
)

// notice is the JSON payload published for downstream notification consumers.
type notice struct {
	Kind        string    `json:"kind"`
	RecipientID string    `json:"recipientId"`
	ActorID     string    `json:"actorId"`
	ActorName   string    `json:"actorName"`
	SentAt      time.Time `json:"sentAt"`
}

// NewKafkaProducer builds a synchronous sarama producer suitable for notice
// publishing. Messages are keyed by recipient, so all notices for one user
// land on the same partition.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Version = sarama.V2_0_0_0
	config.ClientID = "huddle-relationships"

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaNotifier publishes relationship notices to a Kafka topic.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaNotifier constructs a notifier over an existing producer.
func NewKafkaNotifier(producer sarama.SyncProducer, topic string) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic}
}

// NotifyNewRequest publishes a new-request notice addressed to the target.
func (n *KafkaNotifier) NotifyNewRequest(_ context.Context, requesterID, requesterName, targetID string) error {
	return n.publish(notice{
		Kind:        kindNewRequest,
		RecipientID: targetID,
		ActorID:     requesterID,
		ActorName:   requesterName,
		SentAt:      time.Now().UTC(),
	})
}

// NotifyAccepted publishes an accepted notice addressed to the original requester.
func (n *KafkaNotifier) NotifyAccepted(_ context.Context, accepterID, accepterName, requesterID string) error {
	return n.publish(notice{
		Kind:        kindAccepted,
		RecipientID: requesterID,
		ActorID:     accepterID,
		ActorName:   accepterName,
		SentAt:      time.Now().UTC(),
	})
}

func (n *KafkaNotifier) publish(ev notice) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	_, _, err = n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(ev.RecipientID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}

var _ Notifier = (*KafkaNotifier)(nil)

package lineage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/BartekS5/salesflow/pkg/database"
	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Transport names accepted by NewTransport.
const (
	TransportConsole = "console"
	TransportHTTP    = "http"
	TransportKafka   = "kafka"
	TransportMongo   = "mongo"
)

type Options struct {
	Transport       string
	URL             string
	APIKey          string
	Timeout         time.Duration
	KafkaBrokers    string
	KafkaTopic      string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

func NewTransport(ctx context.Context, opts Options) (Transport, error) {
	switch opts.Transport {
	case TransportConsole, "":
		return ConsoleTransport{}, nil
	case TransportHTTP:
		return NewHTTPTransport(opts.URL, opts.APIKey, opts.Timeout)
	case TransportKafka:
		return NewKafkaTransport(opts.KafkaBrokers, opts.KafkaTopic)
	case TransportMongo:
		client, err := database.ConnectMongo(ctx, opts.MongoURI)
		if err != nil {
			return nil, err
		}
		return NewMongoTransport(client, opts.MongoDatabase, opts.MongoCollection), nil
	default:
		return nil, fmt.Errorf("unknown lineage transport %q", opts.Transport)
	}
}

// ConsoleTransport writes events to the application log.
type ConsoleTransport struct{}

func (ConsoleTransport) Send(_ context.Context, ev RunEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	logger.L().Info().RawJSON("lineage", b).Msg("lineage event")
	return nil
}

func (ConsoleTransport) Close() error { return nil }

// HTTPTransport posts events to an OpenLineage-compatible endpoint.
type HTTPTransport struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPTransport(baseURL, apiKey string, timeout time.Duration) (*HTTPTransport, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("lineage http transport: url is required")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPTransport{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/v1/lineage",
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (h *HTTPTransport) Send(ctx context.Context, ev RunEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post lineage event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post lineage event: unexpected status %s", resp.Status)
	}
	return nil
}

func (h *HTTPTransport) Close() error {
	h.client.CloseIdleConnections()
	return nil
}

// KafkaTransport publishes events keyed by job name.
type KafkaTransport struct {
	writer *kafka.Writer
}

func NewKafkaTransport(brokers, topic string) (*KafkaTransport, error) {
	addrs := parseBrokers(brokers)
	if len(addrs) == 0 {
		return nil, fmt.Errorf("lineage kafka transport: brokers are required")
	}
	if topic == "" {
		return nil, fmt.Errorf("lineage kafka transport: topic is required")
	}
	return &KafkaTransport{writer: &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (k *KafkaTransport) Send(ctx context.Context, ev RunEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Job.Namespace + "/" + ev.Job.Name),
		Value: b,
		Time:  ev.EventTime,
	})
}

func (k *KafkaTransport) Close() error { return k.writer.Close() }

func parseBrokers(brokers string) []string {
	var out []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// MongoTransport stores each event as a document.
type MongoTransport struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoTransport(client *mongo.Client, db, collection string) *MongoTransport {
	return &MongoTransport{client: client, coll: client.Database(db).Collection(collection)}
}

func (m *MongoTransport) Send(ctx context.Context, ev RunEvent) error {
	_, err := m.coll.InsertOne(ctx, ev)
	return err
}

func (m *MongoTransport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

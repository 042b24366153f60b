package services

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

// SyncEventPublisher отправляет события синхронизации в Kafka для
// подписчиков (поисковый индекс, бонусная программа). Отправка
// best-effort: ошибка публикации логируется и не влияет на синк
type SyncEventPublisher struct {
	writer *kafka.Writer
}

// NewSyncEventPublisher создает producer для событий синхронизации
// с поддержкой SASL/PLAIN и TLS (для managed Kafka)
func NewSyncEventPublisher(brokers, topic, username, password, caCert string) *SyncEventPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(brokers, ",")...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	transport := &kafka.Transport{DialTimeout: 10 * time.Second}
	needTransport := false

	if username != "" && password != "" {
		transport.SASL = plain.Mechanism{
			Username: username,
			Password: password,
		}
		needTransport = true
		log.Printf("🔐 Kafka: SASL/PLAIN аутентификация включена (username: %s)", username)
	}

	if caCert != "" {
		caCertPool := x509.NewCertPool()
		if ok := caCertPool.AppendCertsFromPEM([]byte(caCert)); ok {
			transport.TLS = &tls.Config{RootCAs: caCertPool}
			log.Printf("🔒 Kafka: TLS с CA сертификатом включен")
		} else {
			transport.TLS = &tls.Config{}
			log.Printf("⚠️ Kafka: не удалось распарсить CA сертификат, используем системные сертификаты")
		}
		needTransport = true
	} else if transport.SASL != nil {
		// Managed Kafka требует TLS для SASL
		transport.TLS = &tls.Config{}
	}

	if needTransport {
		writer.Transport = transport
	}

	log.Printf("✅ Kafka producer событий синхронизации подключен к %s (topic: %s)", brokers, topic)
	return &SyncEventPublisher{writer: writer}
}

// Publish отправляет результат синхронизации одного магазина
func (p *SyncEventPublisher) Publish(result SyncResult) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("⚠️ Kafka: ошибка сериализации события синхронизации %s: %v", result.ShopCode, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(result.ShopCode),
		Value: data,
	})
	if err != nil {
		// Топик создастся автоматически, эту ошибку можно не шуметь
		if !strings.Contains(err.Error(), "Unknown Topic Or Partition") {
			log.Printf("⚠️ Kafka: ошибка отправки события синхронизации %s: %v", result.ShopCode, err)
		}
	}
}

// Close закрывает Kafka writer
func (p *SyncEventPublisher) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

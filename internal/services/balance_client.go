package services

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

// APIError - ошибка транспортного уровня при обращении к API поставщика
// Несет HTTP статус и тело ответа, когда они доступны
type APIError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ошибка API поставщика (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("ошибка API поставщика: %s", e.Message)
}

// BalanceClient - клиент API поставщика BalanceData
// Клиентский PKCS#12 сертификат загружается лениво при первом запросе.
// Если файла сертификата нет, работаем без mutual TLS: часть окружений
// поставщика пускает только по basic auth
type BalanceClient struct {
	apiURL       string
	username     string
	password     string
	certPath     string
	certPassword string

	initOnce   sync.Once
	httpClient *http.Client
}

// NewBalanceClient создает новый клиент API поставщика
func NewBalanceClient(apiURL, username, password, certPath, certPassword string) *BalanceClient {
	return &BalanceClient{
		apiURL:       apiURL,
		username:     username,
		password:     password,
		certPath:     certPath,
		certPassword: certPassword,
	}
}

// initHTTPClient собирает http.Client с жестким таймаутом и, если сертификат
// доступен, с клиентским TLS сертификатом
func (c *BalanceClient) initHTTPClient() {
	client := &http.Client{Timeout: 30 * time.Second}

	data, err := os.ReadFile(c.certPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️ Сертификат %s не найден, работаем без клиентского сертификата", c.certPath)
		} else {
			log.Printf("⚠️ Не удалось прочитать сертификат %s: %v, работаем без клиентского сертификата", c.certPath, err)
		}
		c.httpClient = client
		return
	}

	key, cert, caCerts, err := pkcs12.DecodeChain(data, c.certPassword)
	if err != nil {
		log.Printf("⚠️ Не удалось распаковать PKCS#12 сертификат %s: %v, работаем без клиентского сертификата", c.certPath, err)
		c.httpClient = client
		return
	}

	tlsCert := tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}
	for _, ca := range caCerts {
		tlsCert.Certificate = append(tlsCert.Certificate, ca.Raw)
	}

	client.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{Certificates: []tls.Certificate{tlsCert}},
	}
	c.httpClient = client
	log.Printf("🔐 Клиентский сертификат загружен: %s (CN=%s)", c.certPath, cert.Subject.CommonName)
}

// FetchShopData запрашивает данные магазина у поставщика.
// Ответ поставщика сам по себе неоднозначен: конверт со status success/error,
// либо вообще без конверта - тогда все тело считается полезной нагрузкой
func (c *BalanceClient) FetchShopData(shopCode, requestType string) (interface{}, error) {
	c.initOnce.Do(c.initHTTPClient)

	reqBody, err := json.Marshal(map[string]string{
		"shop_id": shopCode,
		"type":    requestType,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("ошибка чтения ответа: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body), Message: "неуспешный HTTP статус"}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: "пустое тело ответа"}
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body), Message: fmt.Sprintf("невалидный JSON: %v", err)}
	}

	if envelope, ok := payload.(map[string]interface{}); ok {
		if status, has := envelope["status"]; has {
			switch status {
			case "success":
				return envelope["data"], nil
			case "error":
				msg, _ := envelope["message"].(string)
				if msg == "" {
					msg = "поставщик вернул ошибку без описания"
				}
				return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
			default:
				return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("неизвестный status в ответе: %v", status)}
			}
		}
	}

	// Конверта нет - legacy ответ, все тело и есть данные
	return payload, nil
}

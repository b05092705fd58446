package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	coremon "github.com/kilianp07/powerplan/core/monitoring"
	coremqtt "github.com/kilianp07/powerplan/core/mqtt"
	"github.com/kilianp07/powerplan/infra/logger"
)

// DefaultTopicPrefix is the root of the setpoint topics.
const DefaultTopicPrefix = "powerplan"

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Enabled      bool            `json:"enabled"`
	Broker       string          `json:"broker"`
	ClientID     string          `json:"client_id"`
	Username     string          `json:"username"`
	Password     string          `json:"password"`
	TopicPrefix  string          `json:"topic_prefix"`
	AckTopic     string          `json:"ack_topic"`
	AckTimeoutMS int             `json:"ack_timeout_ms"`
	UseTLS       bool            `json:"use_tls"`
	ClientCert   string          `json:"client_cert"`
	ClientKey    string          `json:"client_key"`
	CABundle     string          `json:"ca_bundle"`
	AuthMethod   string          `json:"auth_method"`
	QoS          map[string]byte `json:"qos"`
	LWTTopic     string          `json:"lwt_topic"`
	LWTPayload   string          `json:"lwt_payload"`
	LWTQoS       byte            `json:"lwt_qos"`
	LWTRetain    bool            `json:"lwt_retain"`
	MaxRetries   int             `json:"max_retries"`
	BackoffMS    int             `json:"backoff_ms"`
	TLSConfig    *tls.Config     `json:"-"`
}

// SetDefaults fills the topic layout and timeouts left empty.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.AckTopic == "" {
		c.AckTopic = c.TopicPrefix + "/+/ack"
	}
	if c.AckTimeoutMS <= 0 {
		c.AckTimeoutMS = 2000
	}
	if c.ClientID == "" {
		c.ClientID = "powerplan-" + uuid.NewString()[:8]
	}
}

// Validate checks the settings needed to connect when publication is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt: broker is required when enabled")
	}
	switch c.AuthMethod {
	case "", "username_password", "tls", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %q", c.AuthMethod)
	}
	if strings.ContainsAny(c.TopicPrefix, "+#") {
		return fmt.Errorf("mqtt: topic_prefix must not contain wildcards")
	}
	return nil
}

// AckTimeout returns the configured acknowledgment timeout.
func (c Config) AckTimeout() time.Duration {
	return time.Duration(c.AckTimeoutMS) * time.Millisecond
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

// PahoClient publishes plant setpoints with Eclipse Paho and tracks their
// acknowledgments.
type PahoClient struct {
	cli         pahoClient
	topicPrefix string
	ackTopic    string
	qos         map[string]byte

	mu         sync.Mutex
	ackChans   map[string]chan struct{}
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoClient connects to the MQTT broker and subscribes to the ACK topic.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_client")
	pc := &PahoClient{
		topicPrefix: cfg.TopicPrefix,
		ackTopic:    cfg.AckTopic,
		ackChans:    make(map[string]chan struct{}),
		logger:      log,
		qos:         cfg.QoS,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pc.maxRetries <= 0 {
		pc.maxRetries = 3
	}
	if pc.backoff <= 0 {
		pc.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(pc.ackTopic, pc.qosFor("ack"), pc.onAck); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s holds no certificate", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

func (p *PahoClient) qosFor(kind string) byte {
	if q, ok := p.qos[kind]; ok {
		return q
	}
	return 0
}

// SetpointTopic is the topic a plant controller listens on. The plant
// name must be one non-empty topic level free of wildcards.
func SetpointTopic(prefix, plant string) (string, error) {
	if plant == "" || strings.ContainsAny(plant, "/+#\x00") {
		return "", fmt.Errorf("%w: %q", coremqtt.ErrInvalidPlantName, plant)
	}
	return fmt.Sprintf("%s/%s/setpoint", prefix, plant), nil
}

type setpointMessage struct {
	CommandID string  `json:"command_id"`
	PlanID    string  `json:"plan_id"`
	Plant     string  `json:"plant"`
	PowerMW   float64 `json:"power_mw"`
	Timestamp int64   `json:"timestamp"`
}

func (p *PahoClient) onAck(_ paho.Client, msg paho.Message) {
	var m struct {
		CommandID string `json:"command_id"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode ack: %v", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.ackChans[m.CommandID]
	if !ok {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
	p.logger.Debugf("received ack %s", m.CommandID)
}

// SendSetpoint publishes sp on the plant setpoint topic and returns the
// command identifier used for acknowledgment tracking.
func (p *PahoClient) SendSetpoint(sp coremqtt.Setpoint) (string, error) {
	topic, err := SetpointTopic(p.topicPrefix, sp.Plant)
	if err != nil {
		return "", err
	}
	cmdID := uuid.NewString()
	payload, err := json.Marshal(setpointMessage{
		CommandID: cmdID,
		PlanID:    sp.PlanID,
		Plant:     sp.Plant,
		PowerMW:   sp.PowerMW,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return "", err
	}

	// Registered before publishing so a fast ack is not lost.
	p.mu.Lock()
	p.ackChans[cmdID] = make(chan struct{}, 1)
	p.mu.Unlock()

	qos := p.qosFor("setpoint")
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Infof("sent setpoint %s (%.1f MW) to %s", cmdID, sp.PowerMW, topic)
			return cmdID, nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}

	p.mu.Lock()
	delete(p.ackChans, cmdID)
	p.mu.Unlock()
	coremon.CaptureException(publishErr, map[string]string{"plant": sp.Plant, "plan_id": sp.PlanID, "module": "mqtt"})
	return "", publishErr
}

// WaitForAck blocks until an ACK for the given command ID is received or timeout.
func (p *PahoClient) WaitForAck(commandID string, timeout time.Duration) (bool, error) {
	p.mu.Lock()
	ch := p.ackChans[commandID]
	p.mu.Unlock()
	if ch == nil {
		return false, coremqtt.ErrUnknownCommand
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	defer func() {
		p.mu.Lock()
		delete(p.ackChans, commandID)
		p.mu.Unlock()
	}()
	select {
	case <-ch:
		return true, nil
	case <-timer.C:
		return false, fmt.Errorf("command %s: %w", commandID, coremqtt.ErrAckTimeout)
	}
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

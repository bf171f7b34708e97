// internal/writer/mqtt.go
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	cfg "github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/decoder"
	"github.com/tamzrod/register-poller/internal/poller"
)

const (
	payloadOnline  = "online"
	payloadOffline = "offline"
	payloadOn      = "on"
	payloadOff     = "off"
)

// publisher is the exact broker contract the MQTT writer uses.
type publisher interface {
	Publish(topic string, qos byte, retain bool, payload []byte) error
}

// ------------ TOPICS ------------

// Topics derives every topic of one device from the base topic.
type Topics struct {
	base string
}

func NewTopics(baseTopic, deviceID string) Topics {
	return Topics{base: fmt.Sprintf("%s/%s", baseTopic, slug(deviceID))}
}

func (t Topics) Availability() string { return t.base + "/availability" }
func (t Topics) State() string        { return t.base + "/state" }
func (t Topics) Status() string       { return t.base + "/status" }

func (t Topics) Field(name string) string {
	return fmt.Sprintf("%s/field/%s", t.base, slug(name))
}

func (t Topics) Flag(field, bit string) string {
	return fmt.Sprintf("%s/field/%s/%s", t.base, slug(field), slug(bit))
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// ------------ WRITER ------------

// MQTTWriter publishes each cycle as one JSON state message plus one
// message per field. Bitfield flags get their own on/off topics.
type MQTTWriter struct {
	pub    publisher
	topics Topics
	qos    byte
	retain bool
	log    *zap.Logger

	// status delivery state
	needFull   bool
	lastStatus []byte
}

func newMQTTWriter(pub publisher, topics Topics, qos byte, retain bool, log *zap.Logger) *MQTTWriter {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTWriter{
		pub:      pub,
		topics:   topics,
		qos:      qos,
		retain:   retain,
		log:      log,
		needFull: true,
	}
}

func (w *MQTTWriter) Write(res poller.PollResult) error {
	if res.Err != nil {
		return ErrFailedCycle
	}

	reading := NewReading(res)
	reading.Version = versioninfo.Short()

	state, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("mqtt: encode state: %w", err)
	}

	var errs []error
	if err := w.pub.Publish(w.topics.State(), w.qos, w.retain, state); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", w.topics.State(), err))
	}

	for _, f := range res.Fields {
		switch v := f.Value.(type) {
		case decoder.FlagList:
			for _, flag := range v {
				payload := payloadOff
				if flag.Set {
					payload = payloadOn
				}
				topic := w.topics.Flag(f.Name, flag.Name)
				if err := w.pub.Publish(topic, w.qos, w.retain, []byte(payload)); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", topic, err))
				}
			}
		default:
			topic := w.topics.Field(f.Name)
			if err := w.pub.Publish(topic, w.qos, w.retain, []byte(v.String())); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", topic, err))
			}
		}
	}

	return errors.Join(errs...)
}

// ------------ PAHO ------------

// pahoPublisher waits for every token with a timeout.
type pahoPublisher struct {
	client  mqtt.Client
	timeout time.Duration
}

func (p *pahoPublisher) Publish(topic string, qos byte, retain bool, payload []byte) error {
	return wait(p.client.Publish(topic, qos, retain, payload), p.timeout, "publish")
}

func wait(token mqtt.Token, timeout time.Duration, op string) error {
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("MQTT %s timed out", op)
	}
	return token.Error()
}

// optsFromConfig builds client options with a retained offline will.
func optsFromConfig(c cfg.MQTTOutput, topics Topics) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", c.Host, c.Port))
	opts.SetClientID(fmt.Sprintf("regpoll_%d", rand.Intn(1000)))
	if c.Username != "" && c.Password != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}
	opts.SetAutoReconnect(true)
	opts.WillEnabled = true
	opts.WillPayload = []byte(payloadOffline)
	opts.WillRetained = true
	opts.WillTopic = topics.Availability()
	opts.WillQos = 0
	return opts
}

// DialMQTT connects to the broker and announces the device online.
// The returned close func publishes offline and disconnects.
func DialMQTT(c cfg.MQTTOutput, deviceID string, log *zap.Logger) (*MQTTWriter, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}
	topics := NewTopics(c.BaseTopic, deviceID)
	timeout := time.Duration(c.TimeoutMs) * time.Millisecond

	opts := optsFromConfig(c, topics)
	opts.OnConnect = func(client mqtt.Client) {
		log.Info("mqtt connected", zap.String("broker", fmt.Sprintf("%s:%d", c.Host, c.Port)))
		// re-announce after every reconnect; the broker fired the will on loss
		client.Publish(topics.Availability(), 0, true, payloadOnline)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", zap.Error(err))
	}

	client := mqtt.NewClient(opts)
	if err := wait(client.Connect(), timeout, "connect"); err != nil {
		return nil, nil, fmt.Errorf("mqtt: %w", err)
	}

	pub := &pahoPublisher{client: client, timeout: timeout}
	w := newMQTTWriter(pub, topics, c.QoS, c.Retain, log.Named("mqtt"))

	closeFn := func() error {
		err := pub.Publish(topics.Availability(), 0, true, []byte(payloadOffline))
		client.Disconnect(uint(timeout.Milliseconds()))
		return err
	}
	return w, closeFn, nil
}

package mqtt

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremqtt "github.com/kilianp07/carewatch/core/mqtt"
)

type fakeToken struct {
	err      error
	timedOut bool
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timedOut }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type mockClient struct {
	mu          sync.Mutex
	opts        *paho.ClientOptions
	connectErr  error
	publishErrs []error
	timeouts    int
	published   []published
	connected   bool
	disconnects int
}

func (m *mockClient) IsConnected() bool { return m.connected }

func (m *mockClient) Connect() paho.Token {
	if m.connectErr == nil {
		m.connected = true
	}
	return &fakeToken{err: m.connectErr}
}

func (m *mockClient) Disconnect(uint) {
	m.connected = false
	m.disconnects++
}

func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timeouts > 0 {
		m.timeouts--
		return &fakeToken{timedOut: true}
	}
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &fakeToken{err: err}
	}
	m.published = append(m.published, published{topic: topic, qos: qos, retain: retained, payload: payload.([]byte)})
	return &fakeToken{}
}

func useMock(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
}

func TestPublishSettings(t *testing.T) {
	mc := &mockClient{}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", ClientID: "sim", QoS: 1, Retain: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mc.opts.ClientID, "sim-"))
	assert.Greater(t, len(mc.opts.ClientID), len("sim-"))

	require.NoError(t, pub.Publish("carewatch/state", []byte(`{"beds":3}`)))
	require.Len(t, mc.published, 1)
	assert.Equal(t, "carewatch/state", mc.published[0].topic)
	assert.Equal(t, byte(1), mc.published[0].qos)
	assert.True(t, mc.published[0].retain)

	require.NoError(t, pub.Close())
	assert.Equal(t, 1, mc.disconnects)
	require.NoError(t, pub.Close())
	assert.Equal(t, 1, mc.disconnects)
}

func TestPublishRetries(t *testing.T) {
	mc := &mockClient{publishErrs: []error{errors.New("net fail")}, timeouts: 1}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.Publish("t", []byte("x")))
	assert.Len(t, mc.published, 1)
}

func TestPublishGivesUp(t *testing.T) {
	mc := &mockClient{timeouts: 10}
	useMock(t, mc)
	pub, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883", MaxRetries: 1, BackoffMS: 1})
	require.NoError(t, err)
	err = pub.Publish("t", []byte("x"))
	assert.ErrorIs(t, err, coremqtt.ErrPublishTimeout)
	assert.Equal(t, 8, mc.timeouts)
}

func TestConnectError(t *testing.T) {
	mc := &mockClient{connectErr: errors.New("refused")}
	useMock(t, mc)
	_, err := NewPahoPublisher(Config{Broker: "tcp://localhost:1883"})
	assert.EqualError(t, err, "refused")
}

func TestConfigTopicAndDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, "carewatch/state", c.Topic("state"))
	assert.Equal(t, 3, c.MaxRetries)
	c.TopicPrefix = "hospital/ward7/"
	assert.Equal(t, "hospital/ward7/forecast", c.Topic("/forecast"))
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	m.FailTopics["bad"] = true
	require.NoError(t, m.Publish("good", []byte("1")))
	assert.Error(t, m.Publish("bad", []byte("2")))
	require.Len(t, m.Sent(), 1)
	assert.Equal(t, "good", m.Sent()[0].Topic)
	require.NoError(t, m.Close())
	assert.True(t, m.Closed)
}

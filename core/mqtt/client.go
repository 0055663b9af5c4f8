package mqtt

// Publisher sends telemetry payloads to an MQTT broker.
type Publisher interface {
	// Publish sends payload to topic, retrying according to the client
	// configuration.
	Publish(topic string, payload []byte) error

	// Close disconnects from the broker.
	Close() error
}

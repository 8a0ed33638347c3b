package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type MQTT struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	ClientId string `yaml:"client_id"`
	QoS      byte   `yaml:"qos"`

	RetryInterval Duration `yaml:"retry_interval"` // Wait between connection attempts
	KeepAlive     Duration `yaml:"keep_alive"`
	InboxSize     int      `yaml:"inbox_size"`    // Messages buffered between the network and the light
	PollInterval  Duration `yaml:"poll_interval"` // Longest a single receive step blocks
}

func (m *MQTT) BrokerUrl() string {
	return fmt.Sprintf("tcp://%v:%v", m.Host, m.Port)
}

// ClientOptions returns paho options for the broker. Reconnecting is left to the
// caller, which has to republish state and resubscribe after every connect.
func (m *MQTT) ClientOptions() *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(m.BrokerUrl()).
		SetClientID(m.ClientId).
		SetUsername(m.Username).
		SetPassword(m.Password).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetKeepAlive(time.Duration(m.KeepAlive)).
		SetConnectTimeout(time.Duration(m.RetryInterval)).
		SetConnectionLostHandler(func(client mqtt.Client, err error) {
			log.Printf("MQTT connection lost: %v", err)
		})
}

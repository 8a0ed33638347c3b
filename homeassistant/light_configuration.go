package homeassistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// LightConfiguration represents a Home Assistant RGB light, as published for MQTT discovery
type LightConfiguration struct {
	ConfigTopic string `json:"-"`

	Name            string `json:"name"`
	UniqueId        string `json:"unique_id"`
	Schema          string `json:"schema"`
	CommandTopic    string `json:"command_topic"`
	StateTopic      string `json:"state_topic"`
	RgbCommandTopic string `json:"rgb_command_topic"`
	RgbStateTopic   string `json:"rgb_state_topic"`
	PayloadOn       string `json:"payload_on"`
	PayloadOff      string `json:"payload_off"`
	Optimistic      bool   `json:"optimistic"`
}

// Topics are the four topics the light listens and reports on.
type Topics struct {
	PowerCommand string
	PowerState   string
	ColorCommand string
	ColorState   string
}

func NewLightConfiguration(prefix, name, objectId string, topics Topics, payloadOn, payloadOff string) *LightConfiguration {
	if objectId == "" {
		objectId = strings.Replace(strings.ToLower(name), " ", "_", -1)
	}

	return &LightConfiguration{
		ConfigTopic:     fmt.Sprintf("%v/light/%v/config", prefix, objectId),
		Name:            name,
		UniqueId:        objectId,
		Schema:          "default",
		CommandTopic:    topics.PowerCommand,
		StateTopic:      topics.PowerState,
		RgbCommandTopic: topics.ColorCommand,
		RgbStateTopic:   topics.ColorState,
		PayloadOn:       payloadOn,
		PayloadOff:      payloadOff,
	}
}

func (l *LightConfiguration) Json() ([]byte, error) {
	return json.Marshal(l)
}

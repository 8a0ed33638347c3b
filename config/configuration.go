package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Configuration struct {
	MQTT          *MQTT          `yaml:"mqtt"`
	Topics        *Topics        `yaml:"topics"`
	PWM           *PWM           `yaml:"pwm"`
	HomeAssistant *HomeAssistant `yaml:"home_assistant"`
	Log           *Log           `yaml:"log"`
}

type Topics struct {
	PowerCommand string `yaml:"power_command"`
	PowerState   string `yaml:"power_state"`
	ColorCommand string `yaml:"color_command"`
	ColorState   string `yaml:"color_state"`
}

type PWM struct {
	Driver string   `yaml:"driver"` // "sysfs" or "log"
	Chip   int      `yaml:"chip"`   // sysfs pwmchip number
	Period Duration `yaml:"period"`
	Pins   Pins     `yaml:"pins"`
}

// Pins are the PWM channels driving each color.
type Pins struct {
	Red   int `yaml:"red"`
	Green int `yaml:"green"`
	Blue  int `yaml:"blue"`
}

type HomeAssistant struct {
	Enabled         bool   `yaml:"enabled"`
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	Name            string `yaml:"name"`
	ObjectId        string `yaml:"object_id"`
}

// Duration is a time.Duration read from strings like "5s" or "20ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)

	return nil
}

// Default returns the configuration used for anything the file leaves out.
// Topics, pins and client id match the original office light.
func Default() *Configuration {
	return &Configuration{
		MQTT: &MQTT{
			Port:          1883,
			ClientId:      "office_rgb_light",
			RetryInterval: Duration(5 * time.Second),
			KeepAlive:     Duration(60 * time.Second),
			InboxSize:     16,
			PollInterval:  Duration(250 * time.Millisecond),
		},
		Topics: &Topics{
			PowerCommand: "/light/rgb/rgb1/setOn",
			PowerState:   "/light/rgb/rgb1/getOn",
			ColorCommand: "/light/rgb/rgb1/setRGB",
			ColorState:   "/light/rgb/rgb1/getRGB",
		},
		PWM: &PWM{
			Driver: "sysfs",
			Period: Duration(time.Millisecond),
			Pins:   Pins{Red: 0, Green: 1, Blue: 2},
		},
		HomeAssistant: &HomeAssistant{
			DiscoveryPrefix: "homeassistant",
			Name:            "Office RGB light",
			ObjectId:        "office_rgb_light",
		},
		Log: &Log{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfiguration reads a YAML (or JSON) configuration file on top of Default.
func LoadConfiguration(filename string) (*Configuration, error) {
	var file *os.File
	var err error
	if file, err = os.Open(filename); err != nil {
		return nil, err
	}

	defer file.Close()
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	configuration := Default()
	if err := decoder.Decode(configuration); err != nil {
		return nil, fmt.Errorf("error decoding %v: %w", filename, err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return configuration, nil
}

func (c *Configuration) Validate() error {
	if c.MQTT == nil || c.MQTT.Host == "" {
		return errors.New("mqtt.host is required")
	}

	if c.MQTT.ClientId == "" {
		return errors.New("mqtt.client_id is required")
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %v", c.MQTT.QoS)
	}

	if c.MQTT.RetryInterval <= 0 {
		return errors.New("mqtt.retry_interval must be positive")
	}

	if c.Topics == nil {
		return errors.New("topics are required")
	}

	if err := c.Topics.validate(); err != nil {
		return err
	}

	if c.PWM == nil {
		return errors.New("pwm is required")
	}

	return c.PWM.validate()
}

func (t *Topics) validate() error {
	seen := make(map[string]string)
	for name, topic := range map[string]string{
		"power_command": t.PowerCommand,
		"power_state":   t.PowerState,
		"color_command": t.ColorCommand,
		"color_state":   t.ColorState,
	} {
		if topic == "" {
			return fmt.Errorf("topics.%v is required", name)
		}

		if other, ok := seen[topic]; ok {
			return fmt.Errorf("topics.%v and topics.%v are both %q", name, other, topic)
		}

		seen[topic] = name
	}

	return nil
}

func (p *PWM) validate() error {
	switch p.Driver {
	case "sysfs", "log":
	default:
		return fmt.Errorf("unknown pwm.driver %q", p.Driver)
	}

	if p.Period <= 0 {
		return errors.New("pwm.period must be positive")
	}

	pins := p.Pins
	if pins.Red < 0 || pins.Green < 0 || pins.Blue < 0 {
		return errors.New("pwm.pins must not be negative")
	}

	if pins.Red == pins.Green || pins.Red == pins.Blue || pins.Green == pins.Blue {
		return fmt.Errorf("pwm.pins must be distinct, got %v/%v/%v", pins.Red, pins.Green, pins.Blue)
	}

	return nil
}

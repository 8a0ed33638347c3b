package pwm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultSysfsRoot is where the kernel exposes PWM chips.
const DefaultSysfsRoot = "/sys/class/pwm"

// Sysfs drives channels of one pwmchip through the kernel's sysfs interface.
type Sysfs struct {
	mutex    *sync.Mutex
	chipPath string
	period   time.Duration
	exported map[int]bool
}

func NewSysfs(root string, chip int, period time.Duration) (*Sysfs, error) {
	if period <= 0 {
		return nil, errors.New("NewSysfs requires a positive period")
	}

	chipPath := filepath.Join(root, fmt.Sprintf("pwmchip%d", chip))
	if _, err := os.Stat(chipPath); err != nil {
		return nil, fmt.Errorf("pwm chip %v not available: %w", chip, err)
	}

	return &Sysfs{
		mutex:    new(sync.Mutex),
		chipPath: chipPath,
		period:   period,
		exported: make(map[int]bool),
	}, nil
}

// WriteChannel sets the duty cycle of pin, exporting and enabling it on first use.
func (s *Sysfs) WriteChannel(pin int, duty uint8) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.setup(pin); err != nil {
		return err
	}

	dutyNs := int64(s.period) * int64(duty) / maxDuty

	return s.write(pin, "duty_cycle", strconv.FormatInt(dutyNs, 10))
}

func (s *Sysfs) setup(pin int) error {
	if s.exported[pin] {
		return nil
	}

	if _, err := os.Stat(s.channelPath(pin)); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(filepath.Join(s.chipPath, "export"), []byte(strconv.Itoa(pin)), 0644); err != nil {
			return fmt.Errorf("export pwm%v: %w", pin, err)
		}
	}

	// duty_cycle may not exceed period, so clear it before changing the period
	if err := s.write(pin, "duty_cycle", "0"); err != nil {
		return err
	}

	if err := s.write(pin, "period", strconv.FormatInt(int64(s.period), 10)); err != nil {
		return err
	}

	if err := s.write(pin, "enable", "1"); err != nil {
		return err
	}

	log.WithField("component", "pwm").Debugf("Enabled pwm%v on %v", pin, s.chipPath)
	s.exported[pin] = true

	return nil
}

// Close switches off every channel this driver enabled.
func (s *Sysfs) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var errs []error
	for pin := range s.exported {
		if err := s.write(pin, "duty_cycle", "0"); err != nil {
			errs = append(errs, err)
		}

		if err := s.write(pin, "enable", "0"); err != nil {
			errs = append(errs, err)
		}

		delete(s.exported, pin)
	}

	return errors.Join(errs...)
}

func (s *Sysfs) channelPath(pin int) string {
	return filepath.Join(s.chipPath, fmt.Sprintf("pwm%d", pin))
}

func (s *Sysfs) write(pin int, attribute, value string) error {
	path := filepath.Join(s.channelPath(pin), attribute)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write %v: %w", path, err)
	}

	return nil
}

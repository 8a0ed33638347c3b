package pwm

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Log only logs what it would write. Useful on machines without PWM hardware.
type Log struct {
	mutex  sync.Mutex
	duties map[int]uint8
}

func NewLog() *Log {
	return &Log{duties: make(map[int]uint8)}
}

func (l *Log) WriteChannel(pin int, duty uint8) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.duties[pin] = duty
	log.WithField("component", "pwm").Infof("pwm%v duty %v/%v", pin, duty, maxDuty)

	return nil
}

// Duty returns the last duty written to pin.
func (l *Log) Duty(pin int) uint8 {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.duties[pin]
}

func (l *Log) Close() error {
	return nil
}

package stream

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tarm/serial"
)

// PortConfig describes a serial connection to the controller.
type PortConfig struct {
	Name        string        `json:"name"`
	Baud        int           `json:"baud"`
	ReadTimeout time.Duration `json:"readTimeout"`

	// ResetDelay is the wait after opening while the controller reboots.
	ResetDelay time.Duration `json:"resetDelay"`
}

// DefaultPortConfig matches an Arduino based controller.
var DefaultPortConfig = PortConfig{
	Name:        "/dev/ttyACM0",
	Baud:        9600,
	ReadTimeout: time.Second,
	ResetDelay:  2 * time.Second,
}

// OpenError is returned when the serial port can't be opened.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open serial port '%s': %v", e.Port, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// OpenSerial opens the port and waits for the controller to finish
// resetting.
func OpenSerial(ctx context.Context, cfg PortConfig) (io.ReadWriteCloser, error) {
	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Name,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, &OpenError{Port: cfg.Name, Err: err}
	}
	log.WithField("Port", cfg.Name).Infoln("Connected at", cfg.Baud, "baud")

	err = sleep(ctx, cfg.ResetDelay)
	if err != nil {
		p.Close()
		return nil, err
	}

	return p, nil
}

package controller

import (
	"os"
	"strconv"

	"github.com/PCIGITI/elbow-driver/protocol"
)

// Config has the connection settings for a controller. The UI stores the same fields in its
// preferences
type Config struct {
	SerialPort    string
	BaudRate      string
	TWChartAddr   string
	SessionName   string
	ConstantsFile string
}

// ConfigFromEnv reads SERIAL_PORT, BAUD_RATE, TWCHART_ADDR, SESSION_NAME and CONSTANTS_FILE
func ConfigFromEnv() Config {
	cfg := Config{
		SerialPort:    os.Getenv("SERIAL_PORT"),
		BaudRate:      os.Getenv("BAUD_RATE"),
		TWChartAddr:   os.Getenv("TWCHART_ADDR"),
		SessionName:   os.Getenv("SESSION_NAME"),
		ConstantsFile: os.Getenv("CONSTANTS_FILE"),
	}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.SerialPort == "" {
		cfg.SerialPort = SerialPortNone
	}
	if cfg.BaudRate == "" {
		cfg.BaudRate = defaultBaudRate
	}
	if cfg.SessionName == "" {
		cfg.SessionName = "Elbow Driver"
	}
}

var defaultBaudRate = strconv.Itoa(protocol.DefaultBaudRate)

package tester_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	elbowdriver "github.com/PCIGITI/elbow-driver"
	"github.com/PCIGITI/elbow-driver/protocol"
)

// portEnv names the serial port of a connected board. Tests are skipped without it
const portEnv = "ELBOW_TEST_PORT"

func openPort(t *testing.T) serial.Port {
	t.Helper()

	name := os.Getenv(portEnv)
	if name == "" {
		t.Skipf("%s is not set", portEnv)
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: protocol.DefaultBaudRate})
	require.NoError(t, err)
	t.Cleanup(func() { port.Close() })

	// board resets when the port opens
	time.Sleep(2 * time.Second)
	require.NoError(t, port.ResetInputBuffer())
	require.NoError(t, port.SetReadTimeout(100*time.Millisecond))

	return port
}

// sendSerial writes a line and collects reply lines until OK or ERR
func sendSerial(t *testing.T, port serial.Port, in string) []string {
	t.Helper()

	_, err := port.Write([]byte(strings.TrimSuffix(in, protocol.Terminator) + protocol.Terminator))
	require.NoError(t, err)

	var out strings.Builder
	buf := make([]byte, 128)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		n, err := port.Read(buf)
		require.NoError(t, err)
		out.Write(buf[:n])

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		last := strings.TrimSpace(lines[len(lines)-1])
		if _, ok := protocol.ParseReply(last); ok {
			for i := range lines {
				lines[i] = strings.TrimSpace(lines[i])
			}
			return lines
		}
	}

	t.Fatalf("no reply to %q: %q", in, out.String())
	return nil
}

func TestSerial(t *testing.T) {
	port := openPort(t)

	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{
			"Ping",
			"PING",
			[]string{protocol.Ack},
		},
		{
			"ZeroMove",
			protocol.Encode(elbowdriver.StepVector{}),
			[]string{protocol.Ack},
		},
		{
			"Malformed",
			protocol.MoveAllMotors + ":1,2",
			[]string{"ERR malformed command: expected 11 steps, got 2"},
		},
		{
			"Unknown",
			"JUMP",
			[]string{"ERR unknown command: JUMP"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sendSerial(t, port, tt.in))
		})
	}
}

func TestSerialMoveAndReturn(t *testing.T) {
	port := openPort(t)

	v := elbowdriver.StepVector{10, -10, 5, -5, 0, 0, 0, 0, 0, 0, 8}
	assert.Equal(t, []string{protocol.Ack}, sendSerial(t, port, protocol.Encode(v)))

	back := v
	for i := range back {
		back[i] = -back[i]
	}
	assert.Equal(t, []string{protocol.Ack}, sendSerial(t, port, protocol.Encode(back)))

	lines := sendSerial(t, port, "POSITIONS")
	require.Len(t, lines, elbowdriver.NumMotors+1)
	assert.Equal(t, protocol.Ack, lines[elbowdriver.NumMotors])
}

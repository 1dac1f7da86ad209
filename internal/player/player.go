package player

import (
	"encoding/json"
	"fmt"
	"net"
	"os/exec"
	"sync"
	"time"

	"github.com/0ccipital/youtube-shuffler/internal/logging"
)

const (
	dialTimeout = 200 * time.Millisecond

	// How long to wait for the IPC socket after launching mpv.
	startupPolls        = 20
	startupPollInterval = 200 * time.Millisecond
)

// Controller manages one idle mpv instance and sends it IPC commands.
// All methods are safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	path       string
	socketPath string
	extraArgs  []string
	cmd        *exec.Cmd
}

// NewController creates a controller for the mpv binary at path, using
// socketPath for IPC. audioFilter may be empty to disable filtering.
func NewController(path, socketPath, audioFilter string) *Controller {
	c := &Controller{
		path:       path,
		socketPath: socketPath,
	}
	if audioFilter != "" {
		c.extraArgs = append(c.extraArgs, "--af="+audioFilter)
	}
	return c
}

// Running reports whether an mpv instance is listening on the socket.
func (c *Controller) Running() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Play loads the URL into the mpv instance, launching it first if it
// is not running.
func (c *Controller) Play(url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.Running() {
		if err := c.start(); err != nil {
			return err
		}
	}
	return c.send("loadfile", url, "replace")
}

// Stop tells mpv to quit and reaps the process. Safe to call when
// nothing is running.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Running() {
		if err := c.send("quit"); err != nil {
			logging.Log.Debug().Err(err).Msg("mpv quit command failed")
		}
	}
	if c.cmd != nil && c.cmd.Process != nil {
		// quit usually lands first; Kill covers a wedged instance.
		c.cmd.Process.Kill()
		c.cmd.Wait()
		c.cmd = nil
	}
}

// start launches mpv idle and waits for the IPC socket to appear.
// Caller holds the lock.
func (c *Controller) start() error {
	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--input-ipc-server=" + c.socketPath,
	}
	args = append(args, c.extraArgs...)

	cmd := exec.Command(c.path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch mpv: %w", err)
	}
	c.cmd = cmd

	logging.Log.Info().Str("socket", c.socketPath).Msg("launched mpv")

	for i := 0; i < startupPolls; i++ {
		time.Sleep(startupPollInterval)
		if c.Running() {
			return nil
		}
	}

	cmd.Process.Kill()
	cmd.Wait()
	c.cmd = nil
	return fmt.Errorf("mpv did not open IPC socket at %s", c.socketPath)
}

// send writes one IPC command to the socket.
func (c *Controller) send(command ...any) error {
	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to mpv: %w", err)
	}
	defer conn.Close()

	payload, err := encodeCommand(command...)
	if err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("failed to send mpv command: %w", err)
	}
	return nil
}

// encodeCommand builds the newline-terminated JSON IPC payload.
func encodeCommand(command ...any) ([]byte, error) {
	msg := map[string]any{"command": command}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mpv command: %w", err)
	}
	return append(payload, '\n'), nil
}

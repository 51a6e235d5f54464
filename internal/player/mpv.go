package player

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errClosed = errors.New("mpv: connection closed")

const (
	dialTimeout    = 5 * time.Second
	commandTimeout = 2 * time.Second
)

type mpvCommand struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id"`
}

type mpvMessage struct {
	Error     string      `json:"error"`
	Data      interface{} `json:"data"`
	RequestID int         `json:"request_id"`
	Event     string      `json:"event"`
	Reason    string      `json:"reason"`
}

// MPV plays media with an mpv process controlled over JSON IPC.
//
// The process is started on the first Load and lives until Close. If it
// exits on its own, the next Load starts a new one.
type MPV struct {
	path string

	cmd     *exec.Cmd
	sock    string
	conn    net.Conn
	encoder *jsoniter.Encoder

	writeMu sync.Mutex
	mu      sync.Mutex
	nextID  int
	pending map[int]chan mpvMessage
	state   State
	closed  bool
}

// NewMPV creates an engine using the mpv binary at path.
func NewMPV(path string) *MPV {
	if path == "" {
		path = "mpv"
	}
	return &MPV{path: path, pending: make(map[int]chan mpvMessage)}
}

func (m *MPV) start() error {
	m.mu.Lock()
	closed, running := m.closed, m.conn != nil
	m.mu.Unlock()
	if closed {
		return errClosed
	}
	if running {
		return nil
	}

	dir, err := os.MkdirTemp("", "vkmusic-mpv")
	if err != nil {
		return err
	}
	sock := filepath.Join(dir, "mpv.sock")

	cmd := exec.Command(m.path,
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--input-ipc-server="+sock,
	)
	if err := cmd.Start(); err != nil {
		os.RemoveAll(dir)
		return fmt.Errorf("start %s: %w", m.path, err)
	}

	deadline := time.Now().Add(dialTimeout)
	for {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			m.mu.Lock()
			m.cmd = cmd
			m.sock = sock
			m.mu.Unlock()
			m.attach(conn)
			return nil
		}
		if time.Now().After(deadline) {
			cmd.Process.Kill()
			cmd.Wait()
			os.RemoveAll(dir)
			return fmt.Errorf("dial mpv socket: %w", err)
		}

		log.Debug().Err(err).Msg("could not dial IPC socket, retrying in 100ms")
		time.Sleep(100 * time.Millisecond)
	}
}

// attach starts reading replies and events from conn.
func (m *MPV) attach(conn net.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.encoder = json.NewEncoder(conn)
	m.mu.Unlock()
	go m.readLoop(conn, json.NewDecoder(conn))
}

// readLoop dispatches messages until conn fails. A lost connection detaches
// the process so the next Load starts a new one.
func (m *MPV) readLoop(conn net.Conn, decoder *jsoniter.Decoder) {
	for {
		var msg mpvMessage
		if err := decoder.Decode(&msg); err != nil {
			m.mu.Lock()
			current := m.conn == conn
			m.mu.Unlock()
			if current {
				log.Debug().Err(err).Msg("mpv connection lost")
				m.detach()
			}
			return
		}

		if msg.Event != "" {
			m.handleEvent(msg)
			continue
		}

		m.mu.Lock()
		ch, ok := m.pending[msg.RequestID]
		delete(m.pending, msg.RequestID)
		m.mu.Unlock()
		if ok {
			ch <- msg
		}
	}
}

// detach drops the connection, fails pending commands, stops the process
// and removes its socket directory.
func (m *MPV) detach() {
	m.mu.Lock()
	conn, cmd, sock := m.conn, m.cmd, m.sock
	m.conn, m.encoder, m.cmd, m.sock = nil, nil, nil, ""
	m.state = Stopped
	for id, ch := range m.pending {
		close(ch)
		delete(m.pending, id)
	}
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
	if sock != "" {
		os.RemoveAll(filepath.Dir(sock))
	}
}

func (m *MPV) connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

func (m *MPV) handleEvent(msg mpvMessage) {
	log.Debug().Str("event", msg.Event).Str("reason", msg.Reason).Msg("mpv event")

	// A replaced file ends with reason "stop"; only a natural end or a
	// playback error leaves the player without media.
	if msg.Event == "end-file" && (msg.Reason == "eof" || msg.Reason == "error") {
		m.setState(Stopped)
	}
}

func (m *MPV) command(args ...interface{}) (interface{}, error) {
	m.mu.Lock()
	if m.closed || m.conn == nil {
		m.mu.Unlock()
		return nil, errClosed
	}
	m.nextID++
	id := m.nextID
	ch := make(chan mpvMessage, 1)
	m.pending[id] = ch
	encoder := m.encoder
	m.mu.Unlock()

	m.writeMu.Lock()
	err := encoder.Encode(mpvCommand{Command: args, RequestID: id})
	m.writeMu.Unlock()
	if err != nil {
		m.forget(id)
		return nil, err
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, errClosed
		}
		if msg.Error != "" && msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-time.After(commandTimeout):
		m.forget(id)
		return nil, fmt.Errorf("mpv %v: timeout", args[0])
	}
}

func (m *MPV) forget(id int) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

func (m *MPV) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Load implements Engine.
func (m *MPV) Load(uri string) error {
	if err := m.start(); err != nil {
		return err
	}
	if _, err := m.command("loadfile", uri, "replace"); err != nil {
		return err
	}
	if _, err := m.command("set_property", "pause", false); err != nil {
		return err
	}
	m.setState(Playing)
	return nil
}

// Play implements Engine.
func (m *MPV) Play() error {
	if _, err := m.command("set_property", "pause", false); err != nil {
		return err
	}
	m.setState(Playing)
	return nil
}

// Pause implements Engine.
func (m *MPV) Pause() error {
	if _, err := m.command("set_property", "pause", true); err != nil {
		return err
	}
	m.setState(Paused)
	return nil
}

// Stop implements Engine. Stopping an engine that never played is a no-op.
func (m *MPV) Stop() error {
	defer m.setState(Stopped)
	if !m.connected() {
		return nil
	}
	_, err := m.command("stop")
	return err
}

// SetVolume implements Engine.
func (m *MPV) SetVolume(volume int) error {
	if !m.connected() {
		return nil
	}
	_, err := m.command("set_property", "volume", volume)
	return err
}

// Position implements Engine.
func (m *MPV) Position() (time.Duration, error) {
	return m.seconds("time-pos")
}

// Duration implements Engine.
func (m *MPV) Duration() (time.Duration, error) {
	return m.seconds("duration")
}

func (m *MPV) seconds(property string) (time.Duration, error) {
	data, err := m.command("get_property", property)
	if err != nil {
		return 0, err
	}
	value, ok := data.(float64)
	if !ok {
		return 0, fmt.Errorf("mpv %s: unexpected value %v", property, data)
	}
	return time.Duration(value * float64(time.Second)), nil
}

// Seek implements Engine.
func (m *MPV) Seek(pos time.Duration) error {
	_, err := m.command("seek", pos.Seconds(), "absolute")
	return err
}

// State implements Engine.
func (m *MPV) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Close implements Engine. It stops the mpv process; later loads fail.
func (m *MPV) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.detach()
	return nil
}

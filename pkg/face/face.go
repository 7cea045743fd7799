// Package face implements the client's transport to the local forwarding
// daemon: a non-blocking Unix stream socket, its address resolution from
// CCN_LOCAL_PORT, and the optional CCN_TAP outbound mirror.
package face

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ProjectCCNx/ccnx-sub003/pkg/ccnerr"
)

// DefaultSocketPath is the daemon's well-known Unix socket path absent any
// CCN_LOCAL_PORT override.
const DefaultSocketPath = "/tmp/.ccnd.sock"

// SocketPath resolves the daemon socket path: DefaultSocketPath with a
// "." + CCN_LOCAL_PORT suffix if that env var is set, following the
// "<default-socket>[.<port-token>]" convention.
func SocketPath() string {
	if port := os.Getenv("CCN_LOCAL_PORT"); port != "" {
		return DefaultSocketPath + "." + port
	}
	return DefaultSocketPath
}

// Face owns the non-blocking stream socket to the daemon and the optional
// CCN_TAP mirror file.
type Face struct {
	fd  int
	f   *os.File
	tap *os.File
}

// ErrWouldBlock is returned by Read/Write when the socket has no data
// ready / no buffer space, the non-blocking-socket analogue of EAGAIN.
var ErrWouldBlock = errors.New("face: operation would block")

// Connect opens a non-blocking Unix stream socket to path (SocketPath() if
// empty).
func Connect(path string) (*Face, error) {
	if path == "" {
		path = SocketPath()
	}
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("face: socket: %w", err)
	}
	addr := &unix.SockaddrUnix{Name: path}
	if err := unix.Connect(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: %v", ccnerr.ErrNotConnected, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("face: set nonblock: %w", err)
	}
	f := &Face{fd: fd, f: os.NewFile(uintptr(fd), path)}
	if prefix := os.Getenv("CCN_TAP"); prefix != "" {
		f.openTap(prefix)
	}
	return f, nil
}

// openTap opens the CCN_TAP mirror file at "<prefix>-<pid>-<sec>-<usec>".
// A failure to open the tap is silently ignored, not fatal to the
// connection - the tap is a debugging aid, never load-bearing.
func (f *Face) openTap(prefix string) {
	now := time.Now()
	name := fmt.Sprintf("%s-%d-%d-%d", prefix, os.Getpid(), now.Unix(), now.Nanosecond()/1000)
	tap, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err == nil {
		f.tap = tap
	}
}

// Read reads available bytes into buf. It returns ErrWouldBlock (never an
// error wrapping EAGAIN) when nothing is currently available, and wraps
// ccnerr.ErrDisconnected on EOF or ECONNRESET.
func (f *Face) Read(buf []byte) (int, error) {
	n, err := unix.Read(f.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		if errors.Is(err, unix.ECONNRESET) || errors.Is(err, syscall.ENOTCONN) {
			return 0, ccnerr.ErrDisconnected
		}
		return 0, err
	}
	if n == 0 {
		return 0, ccnerr.ErrDisconnected
	}
	return n, nil
}

// Write writes as many bytes of buf as the socket currently accepts,
// returning the count written (which may be less than len(buf); the
// caller is responsible for queueing the remainder).
// ErrWouldBlock is returned (n==0) rather than an error when the socket
// has no buffer space at all.
func (f *Face) Write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	n, err := unix.Write(f.fd, buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return 0, ErrWouldBlock
		}
		if errors.Is(err, unix.ECONNRESET) || errors.Is(err, syscall.ENOTCONN) {
			return 0, ccnerr.ErrDisconnected
		}
		return 0, err
	}
	if f.tap != nil {
		f.tap.Write(buf[:n])
	}
	return n, nil
}

// Fd returns the raw file descriptor, for use in a poll/select readiness
// check by the client event loop.
func (f *Face) Fd() int { return f.fd }

// Poll blocks up to timeoutMillis for the socket to become readable and/or
// writable, for the run loop's poll step. wantWrite controls
// whether POLLOUT is requested (there is no point polling for
// writability when the output queue is already empty).
func (f *Face) Poll(timeoutMillis int, wantWrite bool) (readable, writable bool, err error) {
	events := int16(unix.POLLIN)
	if wantWrite {
		events |= unix.POLLOUT
	}
	fds := []unix.PollFd{{Fd: int32(f.fd), Events: events}}
	n, err := unix.Poll(fds, timeoutMillis)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, false, nil
		}
		return false, false, err
	}
	if n == 0 {
		return false, false, nil
	}
	re := fds[0].Revents
	return re&unix.POLLIN != 0, re&unix.POLLOUT != 0, nil
}

// Close closes the socket and the tap file, if any.
func (f *Face) Close() error {
	if f.tap != nil {
		f.tap.Close()
	}
	return f.f.Close()
}

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// keyHost reads raw stdin a byte at a time and forwards single-key commands
// to a buffered channel the main loop drains once per frame. Modeled on
// terminal_host.go's TerminalHost: same raw-mode setup, non-blocking read
// loop, and Stop-restores-terminal-state shape, adapted here to emit demo
// commands instead of routing into an MMIO device.
type keyHost struct {
	stopCh      chan struct{}
	done        chan struct{}
	stopped     sync.Once
	fd          int
	nonblockSet bool
	oldState    *term.State
	commands    chan byte
}

func newKeyHost() *keyHost {
	return &keyHost{
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		commands: make(chan byte, 16),
	}
}

// Start puts stdin in raw mode and begins reading in a goroutine. If stdin
// is not a terminal (e.g. running under a test harness or with input
// redirected), it leaves raw mode alone and the command channel simply never
// receives anything.
func (h *keyHost) Start() {
	h.fd = int(os.Stdin.Fd())
	if !term.IsTerminal(h.fd) {
		close(h.done)
		return
	}

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxdemo: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "voxdemo: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-h.stopCh:
				return
			default:
			}
			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				select {
				case h.commands <- buf[0]:
				default:
				}
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// Stop terminates the read goroutine and restores stdin's prior state.
func (h *keyHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
		h.oldState = nil
	}
}

// drain reports every command byte received since the last call, newest
// last.
func (h *keyHost) drain() []byte {
	var out []byte
	for {
		select {
		case b := <-h.commands:
			out = append(out, b)
		default:
			return out
		}
	}
}

// terminalWidth returns the current terminal column count, or a sane
// fallback when stdout isn't a terminal (e.g. piped into a file).
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

package monitor

import (
	"context"
	"net"
	"strconv"
	"time"
)

// Prober checks whether a router answers on a port.
type Prober interface {
	Probe(ctx context.Context, host string, port int) (time.Duration, error)
}

// TCPProber opens a TCP connection to the RouterOS API port and reports how
// long the handshake took.
type TCPProber struct {
	Timeout time.Duration
}

func (p TCPProber) Probe(ctx context.Context, host string, port int) (time.Duration, error) {
	d := net.Dialer{Timeout: p.Timeout}
	start := time.Now()
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return 0, err
	}
	latency := time.Since(start)
	conn.Close()
	return latency, nil
}

// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bassosimone/bipipe"
	"github.com/bassosimone/bipipe/stages/tick"
	"github.com/bassosimone/bipipe/stages/tlsshake"
	"github.com/bassosimone/bipipe/transport"
)

// newRootCmd builds the bipipectl command: dial cfg.Addr, stack the
// reference and domain stages via buildPipeline, and shuttle stdin
// commands and wire events through the resulting [bipipe.Injector] until
// the process is interrupted.
func newRootCmd() *cobra.Command {
	flags := newFlagSet()
	cmd := &cobra.Command{
		Use:           "bipipectl",
		Short:         "drive a bipipe pipeline against a TCP endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			if cfg.Addr == "" {
				return fmt.Errorf("--addr is required")
			}
			return run(cfg)
		},
	}
	cmd.Flags().AddFlagSet(flags)
	return cmd
}

func run(cfg *config) error {
	logger := zlogAdapter{logger: newZerolog(cfg.LogLevel)}
	bmetrics := bipipe.NewMetrics("bipipectl")
	ctx := bipipe.NewContext(
		bipipe.WithLogger(logger),
		bipipe.WithScheduler(realScheduler{}),
		bipipe.WithMetrics(bmetrics),
	)

	if cfg.MetricsListen != "" {
		go serveMetrics(cfg.MetricsListen, bmetrics, logger)
	}

	addrPort, err := resolveAddrPort(cfg.Addr)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", cfg.Addr, err)
	}

	dialChain := transport.Compose3[netip.AddrPort, net.Conn, net.Conn, net.Conn](
		transport.NewConnectFunc(transport.NewConfig(), "tcp", logger),
		transport.NewCancelWatchFunc(),
		transport.NewObserveConnFunc(transport.NewConfig(), logger),
	)

	dctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, err := dialChain.Call(dctx, addrPort)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", cfg.Addr, err)
	}
	defer conn.Close()

	connProvider := tlsshake.ConnProvider(func() (net.Conn, error) { return conn, nil })

	var injRef *bipipe.Injector[[]byte, []byte, []byte, []byte]
	tickRedeliver := tick.Redeliver(func(msg bipipe.Management) {
		if injRef != nil {
			if err := injRef.Management(msg); err != nil {
				logger.Error("tick redelivery failed", "error", err)
			}
		}
	})

	var wsConn *websocket.Conn
	if cfg.WSListen != "" {
		wsConn, err = acceptOneTailingClient(cfg.WSListen, logger)
		if err != nil {
			return fmt.Errorf("accepting websocket tail client: %w", err)
		}
		defer wsConn.Close()
	}

	tlsConfig := &tls.Config{InsecureSkipVerify: cfg.Insecure}
	pipeline := buildPipeline(cfg, tlsConfig, connProvider, tickRedeliver, wsConn)

	sink := &consoleSink{conn: conn}
	inj, err := bipipe.New(pipeline, ctx, sink)
	if err != nil {
		return fmt.Errorf("building pipeline: %w", err)
	}
	injRef = inj

	if cfg.TLS {
		if err := inj.Management(tlsshake.Message); err != nil {
			return fmt.Errorf("TLS handshake: %w", err)
		}
	}

	if cfg.TickInterval > 0 {
		if err := inj.Management(tick.Message); err != nil {
			return fmt.Errorf("starting heartbeat: %w", err)
		}
	}

	done := make(chan struct{})
	go readEventsFromConn(conn, inj, done)
	readCommandsFromStdin(inj)
	<-done
	return nil
}

// resolveAddrPort turns a "host:port" string into a [netip.AddrPort] for
// [transport.ConnectFunc], resolving host via the system resolver if it
// is not already a literal IP address.
func resolveAddrPort(addr string) (netip.AddrPort, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return joinAddrPort(ip, port)
	}
	ips, err := net.DefaultResolver.LookupNetIP(context.Background(), "ip", host)
	if err != nil {
		return netip.AddrPort{}, err
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("no addresses found for %s", host)
	}
	addrPort, err := netip.ParseAddr(ips[0].Unmap().String())
	if err != nil {
		return netip.AddrPort{}, err
	}
	return joinAddrPort(addrPort, port)
}

func joinAddrPort(ip netip.Addr, port string) (netip.AddrPort, error) {
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid port %q: %w", port, err)
	}
	return netip.AddrPortFrom(ip, uint16(p)), nil
}

func newZerolog(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func readCommandsFromStdin(inj *bipipe.Injector[[]byte, []byte, []byte, []byte]) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		inj.InjectCommand(scanner.Bytes())
	}
}

func readEventsFromConn(conn net.Conn, inj *bipipe.Injector[[]byte, []byte, []byte, []byte], done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 64*1024)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			inj.InjectEvent(chunk)
		}
		if err != nil {
			return
		}
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// acceptOneTailingClient serves addr until exactly one websocket client
// upgrades, then returns its connection. wsevents.Stage needs a live
// [*websocket.Conn] at construction time, so a CLI run with --ws-listen
// blocks here until a tailing client shows up.
func acceptOneTailingClient(addr string, logger zlogAdapter) (*websocket.Conn, error) {
	result := make(chan *websocket.Conn, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		c, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("websocket upgrade failed", "error", err)
			return
		}
		select {
		case result <- c:
		default:
			c.Close()
		}
	})
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	logger.Info("waiting for a tailing websocket client", "addr", addr)
	conn := <-result
	go srv.Close()
	return conn, nil
}

// serveMetrics exposes bmetrics' underlying [*metrics.Set] on addr in
// Prometheus text format, the way bgpipe's stages register theirs.
func serveMetrics(addr string, bmetrics *bipipe.Metrics, logger zlogAdapter) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		bmetrics.Set().WritePrometheus(w)
	})
	logger.Info("serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

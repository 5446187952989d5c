// SPDX-License-Identifier: AGPL-3.0-or-later
// hpsdr-emu - Emulate an OpenHPSDR Protocol 1 radio in a single binary
// Copyright (C) 2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/USA-RedDragon/hpsdr-emu>

package protocol1

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/USA-RedDragon/hpsdr-emu/internal/config"
	"github.com/USA-RedDragon/hpsdr-emu/internal/dsp"
	"github.com/USA-RedDragon/hpsdr-emu/internal/hpsdr/hpsdrconst"
	"github.com/USA-RedDragon/hpsdr-emu/internal/metrics"
	"github.com/USA-RedDragon/hpsdr-emu/internal/radio"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// StreamP1Data names the outbound data sequence stream.
const StreamP1Data = "p1_data"

const (
	largestMessageSize = 2048
	bufferSize         = 1000000 // 1MB
	channelBufferSize  = 100
)

var ErrOpenSocket = errors.New("error opening socket")

type datagram struct {
	data []byte
	addr *net.UDPAddr
}

// Server is the Protocol 1 UDP server. A single event loop goroutine owns all
// radio state, signal source, and echo buffer mutation; a reader goroutine
// only moves datagrams off the socket.
type Server struct {
	SocketAddress net.UDPAddr
	Server        *net.UDPConn
	Started       bool

	config  *config.Config
	state   *radio.State
	source  dsp.Source
	echo    *dsp.EchoBuffer
	metrics *metrics.Metrics
	tracer  trace.Tracer

	incomingChan chan datagram

	// Event-loop-owned streaming state.
	client     *net.UDPAddr
	sessionID  string
	controlIdx uint8

	// Readable from other goroutines for periodic statistics.
	running     atomic.Bool
	packetsSent atomic.Uint64
	lastStats   atomic.Uint64

	group  *errgroup.Group
	cancel context.CancelFunc
}

// MakeServer creates a new Protocol 1 server. echo may be nil when echo mode
// is disabled; source must never be nil.
func MakeServer(cfg *config.Config, state *radio.State, source dsp.Source, echo *dsp.EchoBuffer) *Server {
	return &Server{
		SocketAddress: net.UDPAddr{
			IP:   net.ParseIP(cfg.Protocol1.Bind),
			Port: cfg.Protocol1.Port,
		},
		config:       cfg,
		state:        state,
		source:       source,
		echo:         echo,
		metrics:      metrics.NewMetrics(),
		tracer:       otel.Tracer("hpsdr-emu"),
		incomingChan: make(chan datagram, channelBufferSize),
	}
}

// Start binds the UDP socket and launches the reader and event loop.
func (s *Server) Start(ctx context.Context) error {
	server, err := net.ListenUDP("udp", &s.SocketAddress)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpenSocket, err)
	}
	if err := server.SetReadBuffer(bufferSize); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenSocket, err)
	}
	if err := server.SetWriteBuffer(bufferSize); err != nil {
		return fmt.Errorf("%w: %v", ErrOpenSocket, err)
	}
	s.Server = server
	s.Started = true

	slog.Info("Protocol 1 listening",
		"address", server.LocalAddr().String(),
		"radio", s.state.HW.String(),
		"boardCode", s.state.HW.Code(),
		"ddcs", s.state.NDDC,
		"mac", s.state.MACString())

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.group, ctx = errgroup.WithContext(ctx)
	s.group.Go(func() error {
		return s.readLoop(ctx)
	})
	s.group.Go(func() error {
		return s.run(ctx)
	})
	return nil
}

// Stop terminates the loops and closes the socket. Pending sends are not
// drained.
func (s *Server) Stop() {
	if !s.Started {
		return
	}
	s.cancel()
	if err := s.Server.Close(); err != nil {
		slog.Error("Error closing socket", "error", err)
	}
	if err := s.group.Wait(); err != nil {
		slog.Error("Protocol 1 server stopped with error", "error", err)
	}
	s.Started = false
}

// LocalAddr returns the bound socket address.
func (s *Server) LocalAddr() *net.UDPAddr {
	addr, ok := s.Server.LocalAddr().(*net.UDPAddr)
	if !ok {
		return &s.SocketAddress
	}
	return addr
}

// readLoop moves datagrams from the socket onto the event loop's channel.
func (s *Server) readLoop(ctx context.Context) error {
	buf := make([]byte, largestMessageSize)
	for {
		length, remoteaddr, err := s.Server.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Error reading from UDP socket", "error", err)
			s.metrics.ReceiveErrors.Inc()
			continue
		}
		data := make([]byte, length)
		copy(data, buf[:length])
		select {
		case s.incomingChan <- datagram{data: data, addr: remoteaddr}:
		case <-ctx.Done():
			return nil
		}
	}
}

// run is the event loop. It multiplexes inbound datagrams with the outbound
// pacing ticker and reconciles the ticker with the current sample rate and
// DDC count after every step.
func (s *Server) run(ctx context.Context) error {
	var ticker *time.Ticker
	var tickC <-chan time.Time
	var interval time.Duration
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case dg := <-s.incomingChan:
			s.handleDatagram(ctx, dg)
		case <-tickC:
			s.sendDataPacket()
		}

		if s.state.Running && s.client != nil {
			want := s.pacingInterval()
			switch {
			case ticker == nil:
				ticker = time.NewTicker(want)
				tickC = ticker.C
				interval = want
			case want != interval:
				ticker.Reset(want)
				interval = want
			}
		} else if ticker != nil {
			ticker.Stop()
			ticker = nil
			tickC = nil
			slog.Info("Streaming stopped", "session", s.sessionID)
		}
	}
}

// pacingInterval derives the outbound packet period from the current sample
// rate and sub-frame geometry.
func (s *Server) pacingInterval() time.Duration {
	spr := hpsdrconst.SamplesPerSubframe(int(s.state.NDDC))
	samplesPerPacket := 2 * spr
	return time.Duration(float64(samplesPerPacket) / float64(s.state.SampleRate) * float64(time.Second))
}

// sendDataPacket builds one data packet from the signal source and sends it
// to the latched client.
func (s *Server) sendDataPacket() {
	if !s.state.Running || s.client == nil {
		return
	}
	packet := s.buildDataPacket()
	if _, err := s.Server.WriteToUDP(packet, s.client); err != nil {
		slog.Error("Error sending data packet", "error", err)
		s.metrics.SendErrors.Inc()
		return
	}
	s.metrics.DataPacketsSent.Inc()
	s.packetsSent.Add(1)
}

// LogStats emits a periodic statistics line. Safe to call from outside the
// event loop.
func (s *Server) LogStats() {
	sent := s.packetsSent.Load()
	delta := sent - s.lastStats.Swap(sent)
	attrs := []any{
		"running", s.running.Load(),
		"packetsSent", sent,
		"packetsSinceLast", delta,
	}
	if s.echo != nil {
		attrs = append(attrs, "echoRecordings", s.echo.RecordingCount())
	}
	slog.Info("Streaming statistics", attrs...)
}

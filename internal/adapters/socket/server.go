// Package socket serves mnemonic requests over raw TCP: a client writes one
// constraint, the server replies with the wire-encoded result and closes.
package socket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/aretw0/mnemo"
	"github.com/aretw0/mnemo/internal/logging"
	"github.com/aretw0/mnemo/pkg/domain"
	"github.com/aretw0/mnemo/pkg/pool"
	"github.com/aretw0/mnemo/pkg/request"
)

const (
	DefaultPort       = 7799
	DefaultBufferSize = 4096
	readTimeout       = 10 * time.Second
)

// Engine generates mnemonics for one request.
type Engine interface {
	Generate(ctx context.Context, c domain.Constraint, n int) (*mnemo.Result, error)
}

// RequestRecorder counts served requests by status.
type RequestRecorder interface {
	ObserveRequest(transport, status string)
}

// Server accepts connections and hands each request to the worker pool.
type Server struct {
	engine     Engine
	pool       *pool.Pool
	count      int
	bufferSize int
	recorder   RequestRecorder
	logger     *slog.Logger

	wg sync.WaitGroup
}

// Option configures the Server.
type Option func(*Server)

// WithPool queues requests on p. Without a pool each connection is served on its
// own goroutine.
func WithPool(p *pool.Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// WithCount sets the number of sentences generated per request.
func WithCount(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.count = n
		}
	}
}

// WithBufferSize bounds the bytes read from each connection.
func WithBufferSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.bufferSize = n
		}
	}
}

// WithRecorder counts requests.
func WithRecorder(r RequestRecorder) Option {
	return func(s *Server) {
		s.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a socket server over engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:     engine,
		count:      request.DefaultCount,
		bufferSize: DefaultBufferSize,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then waits for the
// requests it dispatched itself. Requests queued on a pool finish with the pool.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("socket server listening", "address", ln.Addr().String())

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				s.wg.Wait()
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				s.wg.Wait()
				return err
			}
			s.logger.Warn("accept failed", "err", err)
			continue
		}
		s.dispatch(ctx, conn)
	}
}

// dispatch reads and serves conn off the accept loop so a slow client only holds
// its own goroutine.
func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		raw, err := s.read(ctx, conn)
		if err != nil {
			s.logger.Warn("read failed", "remote", conn.RemoteAddr().String(), "err", err)
			conn.Close()
			return
		}

		task := func(ctx context.Context) error {
			defer conn.Close()
			return s.handle(ctx, conn, raw)
		}

		if s.pool != nil {
			if _, err := s.pool.Submit(ctx, task); err != nil {
				s.writeError(conn, err)
				conn.Close()
			}
			return
		}
		task(context.WithoutCancel(ctx))
	}()
}

// read takes one request from conn. Shutdown interrupts a pending read.
func (s *Server) read(ctx context.Context, conn net.Conn) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return "", err
	}
	stop := context.AfterFunc(ctx, func() { conn.SetReadDeadline(time.Now()) })
	defer stop()
	buf := make([]byte, s.bufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn, raw string) error {
	parsed, err := request.Parse(request.Request{Constraint: raw}, s.count)
	if err != nil {
		s.writeError(conn, err)
		return err
	}

	res, err := s.engine.Generate(ctx, parsed.Constraint, parsed.Count)
	if err != nil {
		if errors.Is(err, domain.ErrInfeasible) && res != nil {
			err = fmt.Errorf("%w (layer sizes %v)", err, res.LayerSizes)
		}
		s.writeError(conn, err)
		return err
	}

	s.logger.Debug("request served", "id", res.ID, "constraint", res.Constraint)
	s.observe("ok")
	_, err = conn.Write([]byte(request.Encode(res.Wire())))
	return err
}

// ErrorPrefix starts every error reply.
const ErrorPrefix = "ERR "

func (s *Server) writeError(conn net.Conn, err error) {
	s.observe("error")
	if _, werr := conn.Write([]byte(ErrorPrefix + err.Error())); werr != nil {
		s.logger.Warn("write failed", "err", werr)
	}
}

func (s *Server) observe(status string) {
	if s.recorder != nil {
		s.recorder.ObserveRequest("socket", status)
	}
}

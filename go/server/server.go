// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package server provides an HTTP front end for deriving fixture variants and
// running the sample programs against an engine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Fantom-foundation/Tosca-host/go/examples"
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultPort is the port the server listens on if none is configured.
	DefaultPort = 3000

	defaultCacheSize = 128
	maxBodySize      = 1 << 20
)

// Config summarizes the settings of a Server.
type Config struct {
	// CacheSize is the number of configurations retained; 0 selects a default.
	CacheSize int

	// Engine names the registered engine used for running sample programs.
	// If empty, running programs is not supported.
	Engine       string
	EngineConfig any
}

// Server serves the fixture configuration endpoints. Configurations are
// identified by the keccak256 hash of their JSON encoding and kept in memory
// only.
type Server struct {
	logger   log.Logger
	config   Config
	configs  *lru.Cache[tosca.Word, *fixture.Fixture]
	programs *examples.ProgramCache
	mux      *http.ServeMux

	mu       sync.Mutex
	listener net.Listener
}

func New(logger log.Logger, config Config) (*Server, error) {
	if logger == nil {
		logger = log.Root()
	}
	size := config.CacheSize
	if size == 0 {
		size = defaultCacheSize
	}
	configs, err := lru.New[tosca.Word, *fixture.Fixture](size)
	if err != nil {
		return nil, err
	}
	programs, err := examples.NewProgramCache(size)
	if err != nil {
		return nil, err
	}
	res := &Server{
		logger:   logger,
		config:   config,
		configs:  configs,
		programs: programs,
		mux:      http.NewServeMux(),
	}
	res.mux.HandleFunc("GET /{$}", res.handleRoot)
	res.mux.HandleFunc("POST /vmconfig", res.handleCreateConfig)
	res.mux.HandleFunc("GET /vmconfig/{id}", res.handleGetConfig)
	res.mux.HandleFunc("GET /vmconfig/{id}/programs", res.handleGetPrograms)
	res.mux.HandleFunc("GET /test/functions/", res.handleRunPrograms)
	return res, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(recorder, r)
	s.logger.Debug("Served request", "method", r.Method, "path", r.URL.Path, "status", recorder.status, "elapsed", time.Since(start))
}

// ListenAndServe serves requests on the given address until the context is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	server := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("Failed to shut down server", "err", err)
			}
		case <-done:
		}
	}()

	s.logger.Info("Server listening", "addr", listener.Addr())
	if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the address the server is listening on, or nil if it is not
// listening yet.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Lookup returns the configuration registered under the given id.
func (s *Server) Lookup(id tosca.Word) (*fixture.Fixture, bool) {
	return s.configs.Get(id)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Hello~!")
}

type configResponse struct {
	ID     tosca.Word       `json:"id"`
	Config *fixture.Fixture `json:"config"`
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}
	override, err := fixture.ParseOverride(body)
	if err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid configuration: %w", err))
		return
	}
	config := fixture.Default().Apply(override)
	id, err := config.Hash()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.configs.Add(id, config)
	s.logger.Info("Registered configuration", "id", id)
	s.reply(w, configResponse{ID: id, Config: config})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	config, id, ok := s.lookupConfig(w, r.PathValue("id"))
	if !ok {
		return
	}
	s.reply(w, configResponse{ID: id, Config: config})
}

type programResponse struct {
	Name      string     `json:"name"`
	Code      tosca.Data `json:"code"`
	Hash      tosca.Word `json:"hash"`
	Callbacks []string   `json:"callbacks"`
	Status    string     `json:"status"`
	Violation string     `json:"violation,omitempty"`
}

func (s *Server) handleGetPrograms(w http.ResponseWriter, r *http.Request) {
	config, _, ok := s.lookupConfig(w, r.PathValue("id"))
	if !ok {
		return
	}
	programs, err := s.programs.Get(config)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	res := make([]programResponse, 0, len(programs))
	for _, program := range programs {
		res = append(res, programResponse{
			Name:      program.Name,
			Code:      tosca.Data(program.Code),
			Hash:      program.Hash(),
			Callbacks: program.Callbacks,
			Status:    program.Status.String(),
			Violation: program.Violation,
		})
	}
	s.reply(w, res)
}

type runResponse struct {
	Name        string     `json:"name"`
	Passed      bool       `json:"passed"`
	Status      string     `json:"status,omitempty"`
	GasLeft     tosca.Word `json:"gasLeft"`
	Invocations int        `json:"invocations"`
	Violations  int        `json:"violations"`
	Error       string     `json:"error,omitempty"`
}

// handleRunPrograms runs all sample programs of a configuration, each in a
// fresh session. The configuration is selected by the optional `config`
// query parameter; the canonical fixture is used by default.
func (s *Server) handleRunPrograms(w http.ResponseWriter, r *http.Request) {
	if s.config.Engine == "" {
		s.fail(w, http.StatusServiceUnavailable, fmt.Errorf("no engine configured"))
		return
	}
	config := fixture.Default()
	if id := r.URL.Query().Get("config"); id != "" {
		var ok bool
		if config, _, ok = s.lookupConfig(w, id); !ok {
			return
		}
	}
	programs, err := s.programs.Get(config)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}

	res := make([]runResponse, 0, len(programs))
	for _, program := range programs {
		sess, err := session.Open(s.config.Engine, s.config.EngineConfig, config, simulator.WithLogger(s.logger))
		if err != nil {
			res = append(res, runResponse{Name: program.Name, Error: err.Error()})
			continue
		}
		result, err := program.RunOn(sess)
		check := program.Check(result, err, sess.Records())
		entry := runResponse{
			Name:        program.Name,
			Passed:      check == nil,
			Invocations: sess.Invocations(),
			Violations:  sess.Violations(),
		}
		if err == nil {
			entry.Status = result.Status.String()
			entry.GasLeft = result.GasLeft
		}
		if check != nil {
			entry.Error = check.Error()
		}
		if err := sess.Release(); err != nil && entry.Error == "" {
			entry.Error = err.Error()
		}
		res = append(res, entry)
	}
	s.reply(w, res)
}

func (s *Server) lookupConfig(w http.ResponseWriter, text string) (*fixture.Fixture, tosca.Word, bool) {
	var id tosca.Word
	if err := id.UnmarshalText([]byte(text)); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid configuration id: %w", err))
		return nil, id, false
	}
	config, found := s.configs.Get(id)
	if !found {
		s.fail(w, http.StatusNotFound, fmt.Errorf("unknown configuration: %v", id))
		return nil, id, false
	}
	return config, id, true
}

func (s *Server) reply(w http.ResponseWriter, value any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		s.logger.Warn("Failed to encode response", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("Request failed", "status", status, "err", err)
	http.Error(w, err.Error(), status)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

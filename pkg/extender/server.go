// Copyright The Renewable Simulator Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package extender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"k8s.io/klog/v2"
	extenderv1 "k8s.io/kube-scheduler/extender/v1"
)

// maxRequestBytes bounds the decoded ExtenderArgs body.
const maxRequestBytes = 32 << 20

// Server exposes an Extender over the kube-scheduler extender protocol.
type Server struct {
	extender *Extender
	version  string
	router   *mux.Router
	health   http.Handler
}

// NewServer wires the extender routes. health serves /healthz and may be nil.
func NewServer(extender *Extender, version string, health http.Handler) *Server {
	s := &Server{
		extender: extender,
		version:  version,
		router:   mux.NewRouter(),
		health:   health,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/filter", s.handleFilter).Methods(http.MethodPost)
	s.router.HandleFunc("/prioritize", s.handlePrioritize).Methods(http.MethodPost)
	s.router.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)
	if s.health != nil {
		s.router.Handle("/healthz", s.health).Methods(http.MethodGet)
	}
	s.router.Use(loggingMiddleware)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.InfoS("Starting scheduler extender server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("scheduler extender server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	klog.InfoS("Shutting down scheduler extender server")
	return server.Shutdown(shutdownCtx)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var args extenderv1.ExtenderArgs
	if err := decodeArgs(w, r, &args); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, &extenderv1.ExtenderFilterResult{Error: err.Error()})
		return
	}

	result, err := s.extender.Filter(args)
	if err != nil {
		writeJSONResponse(w, http.StatusOK, &extenderv1.ExtenderFilterResult{Error: err.Error()})
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (s *Server) handlePrioritize(w http.ResponseWriter, r *http.Request) {
	var args extenderv1.ExtenderArgs
	if err := decodeArgs(w, r, &args); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	priorities, err := s.extender.Prioritize(args)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSONResponse(w, http.StatusOK, priorities)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, s.version)
}

func decodeArgs(w http.ResponseWriter, r *http.Request, args *extenderv1.ExtenderArgs) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(args); err != nil {
		return fmt.Errorf("failed to decode extender args: %w", err)
	}
	return nil
}

func writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		klog.ErrorS(err, "Failed to encode JSON response")
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		klog.V(4).InfoS("HTTP request completed",
			"method", r.Method, "path", r.URL.Path,
			"duration", time.Since(start))
	})
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/idelchi/pcrypt/internal/bench"
	"github.com/idelchi/pcrypt/internal/encryption"
)

type runOneRequest struct {
	SizeMB  int    `json:"size_mb"`
	Mode    string `json:"mode"`
	Threads int    `json:"threads"`
}

type sweepRequest struct {
	SizeMB int    `json:"size_mb"`
	Mode   string `json:"mode"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.Atoi(mux.Vars(r)["size_mb"])
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %q", errBadRequest, mux.Vars(r)["size_mb"]))

		return
	}

	if err := s.checkSize(size); err != nil {
		s.writeError(w, r, err)

		return
	}

	path, err := bench.GenerateFile(s.DataDir, size)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": path})
}

func (s *Server) handleRunOne(w http.ResponseWriter, r *http.Request) {
	var req runOneRequest

	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	if req.Threads <= 0 {
		s.writeError(w, r, fmt.Errorf("%w: threads must be positive", errBadRequest))

		return
	}

	in, mode, err := s.input(req.SizeMB, req.Mode)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	record, err := s.Runner.RunOne(r.Context(), in, mode, req.Threads)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.Store.Append(record); err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleThreadSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest

	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)

		return
	}

	in, mode, err := s.input(req.SizeMB, req.Mode)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	records, err := s.Runner.Sweep(r.Context(), in, mode, s.Threads)
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	if err := s.Store.Append(records...); err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	records, err := s.Store.Load()
	if err != nil {
		s.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, records)
}

// input validates the size and mode of a request and loads its data file.
func (s *Server) input(sizeMB int, name string) (bench.Input, encryption.Mode, error) {
	if err := s.checkSize(sizeMB); err != nil {
		return bench.Input{}, 0, err
	}

	mode, err := encryption.ParseMode(name)
	if err != nil {
		return bench.Input{}, 0, err
	}

	data, err := bench.LoadData(s.DataDir, sizeMB)
	if err != nil {
		return bench.Input{}, 0, err
	}

	return bench.Input{
		Name: bench.DataName(sizeMB),
		Path: bench.DataPath(s.DataDir, sizeMB),
		Data: data,
	}, mode, nil
}

func (s *Server) checkSize(sizeMB int) error {
	if sizeMB <= 0 || sizeMB > s.maxSize() {
		return fmt.Errorf("%w: size_mb must be in [1, %d], got %d", errBadRequest, s.maxSize(), sizeMB)
	}

	return nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decoding body: %w", errBadRequest, err)
	}

	return nil
}

package server

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/idelchi/pcrypt/internal/bench"
	"github.com/idelchi/pcrypt/internal/encryption"
)

var errBadRequest = errors.New("bad request")

// clientErrors are reported as 400; everything else is a server fault.
//
//nolint:gochecknoglobals
var clientErrors = []error{
	errBadRequest,
	bench.ErrDataMissing,
	bench.ErrInvalidSize,
	encryption.ErrInvalidMode,
	encryption.ErrKeyLength,
	encryption.ErrAlignment,
	encryption.ErrInvalidPlan,
	encryption.ErrPayloadFormat,
}

// StatusFor maps an error onto its HTTP status code.
func StatusFor(err error) int {
	if errors.Is(err, encryption.ErrWorkerFailure) {
		return http.StatusInternalServerError
	}

	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	entry := s.Logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	}).WithError(err)

	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	writeJSON(w, status, map[string]string{"error": err.Error()})
}

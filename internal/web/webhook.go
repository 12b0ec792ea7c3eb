package web

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vadiminshakov/tradeguard/internal/domain"
)

const maxBodyBytes = 64 << 10

type signalRequest struct {
	Ticker     string `json:"ticker"`
	Action     string `json:"action"`
	Test       bool   `json:"test"`
	Passphrase string `json:"passphrase,omitempty"`
}

// responseText is what the caller sees for each outcome. Dependency
// failures never carry detail.
var responseText = map[domain.Reason]string{
	domain.ReasonTickerNotAllowed:        "Ticker not allowed",
	domain.ReasonInvalidAction:           "Invalid action",
	domain.ReasonMarketClosed:            "Outside market hours",
	domain.ReasonDayTrade:                "Day trade blocked",
	domain.ReasonDuplicateExposure:       "Duplicate exposure",
	domain.ReasonInvalidPrice:            "Invalid price data",
	domain.ReasonInsufficientBuyingPower: "Not enough buying power",
	domain.ReasonDependency:              "Server error",
}

// StatusFor maps a decision to its HTTP status code.
func StatusFor(dec domain.Decision) int {
	if dec.Approved {
		return http.StatusOK
	}
	switch dec.Reason {
	case domain.ReasonTickerNotAllowed, domain.ReasonMarketClosed, domain.ReasonDayTrade:
		return http.StatusForbidden
	case domain.ReasonDuplicateExposure:
		return http.StatusConflict
	case domain.ReasonInvalidAction, domain.ReasonInvalidPrice, domain.ReasonInsufficientBuyingPower:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	var req signalRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && err != io.EOF {
		s.logger.Info("undecodable signal body", zap.String("remote", r.RemoteAddr), zap.Error(err))
		writeText(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if s.passphrase != "" &&
		subtle.ConstantTimeCompare([]byte(req.Passphrase), []byte(s.passphrase.Reveal())) != 1 {
		s.logger.Warn("signal rejected: passphrase mismatch", zap.String("remote", r.RemoteAddr))
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	decision := s.signals.Handle(r.Context(), domain.NewTradeSignal(req.Ticker, req.Action, req.Test))

	status := StatusFor(decision)
	if status == http.StatusOK {
		writeText(w, status, decision.Confirmation())
		return
	}
	text, ok := responseText[decision.Reason]
	if !ok {
		text = "Server error"
	}
	writeText(w, status, text)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

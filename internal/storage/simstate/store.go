package simstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	DefaultStateDir = "./wal/simulate"
	stateDirEnv     = "TRADEGUARD_SIMULATE_STATE_DIR"
)

// Store persists the paper brokerage so restarts keep cash, positions and orders.
type Store struct {
	path string
}

func resolveStateDir(dir string) string {
	if stateDir := os.Getenv(stateDirEnv); stateDir != "" {
		return stateDir
	}
	if dir != "" {
		return dir
	}
	return DefaultStateDir
}

// NewStore creates a state store under dir named after scope.
func NewStore(dir, scope string) (*Store, error) {
	stateDir := resolveStateDir(dir)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create simulate state dir")
	}

	name := sanitizeScope(scope)
	if name == "" {
		name = "account"
	}

	return &Store{path: filepath.Join(stateDir, fmt.Sprintf("%s.json", name))}, nil
}

// Path returns the state file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// State represents all persisted simulator data.
type State struct {
	Cash      string            `json:"cash"`
	Positions map[string]string `json:"positions"`
	Orders    []StoredOrder     `json:"orders"`
}

// StoredOrder is a serializable paper order.
type StoredOrder struct {
	ID            string     `json:"id"`
	ClientOrderID string     `json:"client_order_id"`
	Ticker        string     `json:"ticker"`
	Side          string     `json:"side"`
	Quantity      int64      `json:"quantity"`
	Status        string     `json:"status"`
	SubmittedAt   time.Time  `json:"submitted_at"`
	FilledAt      *time.Time `json:"filled_at,omitempty"`
	FillPrice     string     `json:"fill_price,omitempty"`
}

// Load reads simulator state from disk. A missing file yields nil state.
func (s *Store) Load() (*State, error) {
	if s == nil || s.path == "" {
		return nil, nil
	}

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "read simulate state")
	}

	if len(payload) == 0 {
		return nil, nil
	}

	var state State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, errors.Wrap(err, "decode simulate state")
	}

	return &state, nil
}

// Save writes simulator state to disk atomically via temp file.
func (s *Store) Save(state State) error {
	if s == nil || s.path == "" {
		return nil
	}

	payload, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode simulate state")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write simulate state temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist simulate state")
	}

	return nil
}

// DecodePositions parses stored position quantities.
func (st *State) DecodePositions() (map[string]decimal.Decimal, error) {
	positions := make(map[string]decimal.Decimal, len(st.Positions))
	for ticker, raw := range st.Positions {
		qty, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "decode position quantity for %s", ticker)
		}
		positions[ticker] = qty
	}
	return positions, nil
}

func sanitizeScope(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}

	var b strings.Builder

	prevUnderscore := false

	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)

			prevUnderscore = false

			continue
		}

		if !prevUnderscore {
			b.WriteByte('_')

			prevUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}

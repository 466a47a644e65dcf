package bundle

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/opencontainers/go-digest"
)

// ErrPayloadMissing is returned when a manifest entry has no matching
// payload in the archive.
var ErrPayloadMissing = errors.New("bundle: no payload for manifest entry")

// matcher holds MatchPayloads configuration.
type matcher struct {
	lenient bool
	logger  *slog.Logger
}

// MatchOption configures MatchPayloads.
type MatchOption func(*matcher)

// WithLenientMatch enables the legacy fallback chain for entries whose
// hash matches no payload: first a payload named by the entry's target
// or binary id, then the first unclaimed payload. Both fallbacks can
// attach the wrong payload when the archive is ambiguous, so each match
// made this way is logged as a warning.
func WithLenientMatch() MatchOption {
	return func(m *matcher) {
		m.lenient = true
	}
}

// WithMatchLogger sets the logger for fallback warnings.
func WithMatchLogger(logger *slog.Logger) MatchOption {
	return func(m *matcher) {
		m.logger = logger
	}
}

func (m *matcher) log() *slog.Logger {
	if m.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.logger
}

// candidate is a payload with its computed hash and claim state.
type candidate struct {
	Payload
	hash    string
	claimed bool
}

// MatchPayloads assigns each manifest entry its payload bytes, keyed by
// binary id. The authoritative rule is content hash: a payload belongs
// to the entry whose declared hash equals the payload's computed
// SHA-256. Entries left unmatched are an error unless lenient matching
// is enabled.
func MatchPayloads(m *Manifest, payloads []Payload, opts ...MatchOption) (map[string][]byte, error) {
	cfg := &matcher{}
	for _, opt := range opts {
		opt(cfg)
	}

	candidates := make([]*candidate, len(payloads))
	for i, p := range payloads {
		candidates[i] = &candidate{
			Payload: p,
			hash:    digest.FromBytes(p.Data).Encoded(),
		}
	}

	matched := make(map[string][]byte, len(m.Bundle.Manifest))
	var unmatched []Entry

	for _, entry := range m.Bundle.Manifest {
		var found bool
		for _, c := range candidates {
			if !c.claimed && c.hash == entry.Hash {
				c.claimed = true
				matched[entry.BinaryID] = c.Data
				found = true
				break
			}
		}
		if !found {
			unmatched = append(unmatched, entry)
		}
	}

	if len(unmatched) == 0 {
		return matched, nil
	}
	if !cfg.lenient {
		return nil, fmt.Errorf("%w: binary %s (hash %s)", ErrPayloadMissing, unmatched[0].BinaryID, unmatched[0].Hash)
	}

	for _, entry := range unmatched {
		c := cfg.fallback(candidates, entry)
		if c == nil {
			return nil, fmt.Errorf("%w: binary %s (hash %s)", ErrPayloadMissing, entry.BinaryID, entry.Hash)
		}
		c.claimed = true
		matched[entry.BinaryID] = c.Data
	}
	return matched, nil
}

// fallback picks a payload for an entry whose hash matched nothing:
// name match first, then the first unclaimed payload.
func (m *matcher) fallback(candidates []*candidate, entry Entry) *candidate {
	for _, c := range candidates {
		if !c.claimed && (c.Name == entry.Target || c.Name == entry.BinaryID) {
			m.log().Warn("payload matched by name, not hash",
				"binary_id", entry.BinaryID,
				"payload", c.Name,
				"want_hash", entry.Hash,
				"got_hash", c.hash,
			)
			return c
		}
	}
	for _, c := range candidates {
		if !c.claimed {
			m.log().Warn("payload matched by position only",
				"binary_id", entry.BinaryID,
				"payload", c.Name,
				"want_hash", entry.Hash,
				"got_hash", c.hash,
			)
			return c
		}
	}
	return nil
}

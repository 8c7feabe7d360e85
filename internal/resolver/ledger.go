package resolver

import (
	"strings"

	"tallyflow/internal/domain"
	"tallyflow/internal/gst"
)

// LedgerSnapshot is a point-in-time copy of the ledger master.
type LedgerSnapshot struct {
	byKey map[string]*domain.LedgerMaster
}

// NewLedgerSnapshot indexes the ledger master rows for lookup.
func NewLedgerSnapshot(ledgers []domain.LedgerMaster) *LedgerSnapshot {
	s := &LedgerSnapshot{byKey: make(map[string]*domain.LedgerMaster, len(ledgers))}
	for i := range ledgers {
		l := &ledgers[i]
		s.byKey[ledgerKey(l.Channel, l.BuyerState)] = l
	}
	return s
}

func ledgerKey(channel domain.Channel, state string) string {
	return string(channel) + "|" + gst.CanonicalState(state)
}

// Lookup resolves a (channel, buyer_state) pair.
func (s *LedgerSnapshot) Lookup(channel domain.Channel, state string) (*domain.LedgerMaster, bool) {
	l, ok := s.byKey[ledgerKey(channel, state)]
	return l, ok
}

// LedgerResult is the outcome of ledger resolution over a dataset.
type LedgerResult struct {
	Rows   []domain.EnrichedRow
	Misses []domain.LedgerApprovalPayload
}

// ResolveLedgers annotates already item-resolved rows with the ledger
// name. The suggested ledger on a miss is
// "{Channel Title-Case} {state abbreviation}".
func ResolveLedgers(rows []domain.EnrichedRow, snap *LedgerSnapshot) *LedgerResult {
	res := &LedgerResult{Rows: make([]domain.EnrichedRow, 0, len(rows))}
	seen := make(map[string]bool)

	for i := range rows {
		er := rows[i]
		if l, ok := snap.Lookup(er.Channel, er.BuyerState); ok {
			er.LedgerName = l.LedgerName
			er.LedgerResolved = true
		} else {
			key := ledgerKey(er.Channel, er.BuyerState)
			if !seen[key] {
				seen[key] = true
				res.Misses = append(res.Misses, domain.LedgerApprovalPayload{
					Channel:             er.Channel,
					BuyerState:          gst.CanonicalState(er.BuyerState),
					SuggestedLedgerName: SuggestLedgerName(er.Channel, er.BuyerState),
				})
			}
		}
		res.Rows = append(res.Rows, er)
	}
	return res
}

// SuggestLedgerName builds the default ledger name for a channel+state.
func SuggestLedgerName(channel domain.Channel, state string) string {
	return titleCaseChannel(channel) + " " + gst.StateAbbreviation(state)
}

func titleCaseChannel(channel domain.Channel) string {
	parts := strings.Split(string(channel), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}

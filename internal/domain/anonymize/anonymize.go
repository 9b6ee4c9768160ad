// Package anonymize maps organization identities to stable pseudonyms and
// selects top performers without exposing raw identifiers.
package anonymize

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"math"
	"sort"

	"github.com/google/uuid"
)

// pseudonymHexWidth is the truncated width of the rendered pseudonym.
const pseudonymHexWidth = 12

// Default leader selection parameters: top 10% of the cohort, capped.
const (
	leaderFraction   = 0.1
	defaultMaxLeader = 5
)

// Ranked pairs an organization with its metric value for leader selection.
type Ranked struct {
	OrganizationID string
	Value          float64
}

// Anonymizer produces per-instance stable, non-reversible pseudonyms.
// The same organization always yields the same pseudonym within one
// instance; without the salt the mapping cannot be inverted.
type Anonymizer struct {
	salt    []byte
	enabled bool
}

// Option applies a configuration option to the Anonymizer.
type Option func(*Anonymizer)

// WithSalt sets the pseudonym salt. Instances sharing a salt produce
// identical pseudonyms, which allows stable IDs across restarts.
func WithSalt(salt string) Option {
	return func(a *Anonymizer) {
		if salt != "" {
			a.salt = []byte(salt)
		}
	}
}

// WithEnabled toggles anonymization. When disabled, raw organization IDs
// pass through unchanged (internal or debug deployments only).
func WithEnabled(enabled bool) Option {
	return func(a *Anonymizer) {
		a.enabled = enabled
	}
}

// New creates an Anonymizer. If no salt is supplied a random one is
// generated, making pseudonyms stable only for the life of the process.
func New(opts ...Option) *Anonymizer {
	a := &Anonymizer{enabled: true}
	for _, opt := range opts {
		opt(a)
	}
	if len(a.salt) == 0 {
		a.salt = []byte(uuid.NewString())
	}
	return a
}

// Enabled reports whether pseudonymization is active.
func (a *Anonymizer) Enabled() bool {
	return a.enabled
}

// Pseudonym returns the outward-facing identifier for an organization:
// an HMAC-SHA256 of the ID under the instance salt, truncated and hex
// encoded as "peer-<12 hex>". Stable per instance, not invertible.
func (a *Anonymizer) Pseudonym(organizationID string) string {
	if !a.enabled {
		return organizationID
	}
	mac := hmac.New(sha256.New, a.salt)
	mac.Write([]byte(organizationID))
	sum := mac.Sum(nil)
	return "peer-" + hex.EncodeToString(sum)[:pseudonymHexWidth]
}

// Leaders returns the pseudonyms of the cohort's top performers. Direction
// follows the metric: ascending for lower-is-better metrics, descending
// otherwise. Leader count is min(ceil(0.1*n), max); max defaults to 5 when
// non-positive. Ties break on organization ID for determinism.
func (a *Anonymizer) Leaders(cohort []Ranked, lowerBetter bool, max int) []string {
	if len(cohort) == 0 {
		return nil
	}
	if max <= 0 {
		max = defaultMaxLeader
	}

	ranked := make([]Ranked, len(cohort))
	copy(ranked, cohort)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			if lowerBetter {
				return ranked[i].Value < ranked[j].Value
			}
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].OrganizationID < ranked[j].OrganizationID
	})

	count := int(math.Ceil(leaderFraction * float64(len(ranked))))
	if count > max {
		count = max
	}

	leaders := make([]string, 0, count)
	for _, r := range ranked[:count] {
		leaders = append(leaders, a.Pseudonym(r.OrganizationID))
	}
	return leaders
}

// ReleaseAllowed is the privacy gate: aggregated output for a cohort may
// only be released when the filtered sample is at least the aggregation
// threshold, guarding against small-cohort re-identification. This is
// distinct from the statistical minimum sample size.
func ReleaseAllowed(sampleSize, threshold int) bool {
	return sampleSize >= threshold
}

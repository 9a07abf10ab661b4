// Package id generates sortable identifiers for emitted reports.
//
// Report IDs are prefixed ULIDs ("rpt_01J..."), so a directory of report
// files lists in emission order.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ReportID identifies one emitted trace report.
type ReportID string

// ReportPrefix tags report IDs.
const ReportPrefix = "rpt"

// Generator generates ULIDs from a shared entropy source.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator with monotonic, cryptographically
// seeded entropy.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy, now: time.Now}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// NewReportID creates a prefixed report ID.
func (g *Generator) NewReportID() ReportID {
	return ReportID(fmt.Sprintf("%s_%s", ReportPrefix, g.Generate().String()))
}

// NewReportID creates a report ID from the default generator.
func NewReportID() ReportID {
	return Default().NewReportID()
}

func (r ReportID) String() string { return string(r) }

// Time returns the creation time encoded in a report ID.
func (r ReportID) Time() (time.Time, error) {
	raw := strings.TrimPrefix(string(r), ReportPrefix+"_")
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

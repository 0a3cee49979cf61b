// Package ordercode mints deposit order codes and encodes them into short
// remittance descriptions.
//
// Codes are snowflake ids laid out to fit in 53 bits so they survive payment
// rails that carry them as JSON numbers. The description always keeps the full
// zero-padded code; only the prefix is shortened to fit the rail limit.
package ordercode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	// Digits is the fixed width of an order code inside a description.
	Digits = 16
	// MaxDescriptionLen is the longest description payment rails accept unmodified.
	MaxDescriptionLen = 25
	// DefaultPrefix is used when no description prefix is configured.
	DefaultPrefix = "NAP"

	nodeBits = 5
	stepBits = 6
)

// epoch is 2024-01-01T00:00:00Z; 41 bits of milliseconds from here last until 2093.
var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var layoutOnce sync.Once

// Generator mints unique, time-ordered order codes for one process.
type Generator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node id (0..31). Processes sharing a
// ledger must use distinct node ids.
func NewGenerator(nodeID int64) (*Generator, error) {
	layoutOnce.Do(func() {
		snowflake.Epoch = epoch.UnixMilli()
		snowflake.NodeBits = nodeBits
		snowflake.StepBits = stepBits
	})
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("ordercode: %w", err)
	}
	return &Generator{node: node}, nil
}

// Next returns a new order code.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// Describe renders the remittance description for an order code.
func Describe(prefix string, orderCode int64) string {
	p := sanitizePrefix(prefix)
	if room := MaxDescriptionLen - Digits; len(p) > room {
		p = p[:room]
	}
	return fmt.Sprintf("%s%0*d", p, Digits, orderCode)
}

// Parse extracts an order code from free text such as a bank remittance memo.
func Parse(prefix, text string) (int64, bool) {
	p := sanitizePrefix(prefix)
	if room := MaxDescriptionLen - Digits; len(p) > room {
		p = p[:room]
	}
	re := regexp.MustCompile(regexp.QuoteMeta(p) + `(\d{` + strconv.Itoa(Digits) + `})`)
	m := re.FindStringSubmatch(strings.ToUpper(text))
	if m == nil {
		return 0, false
	}
	code, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}

// sanitizePrefix keeps ASCII letters and digits; bank rails drop everything else.
func sanitizePrefix(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	var b strings.Builder
	for _, r := range strings.ToUpper(prefix) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultPrefix
	}
	return b.String()
}

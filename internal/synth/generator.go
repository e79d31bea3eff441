// Package synth fabricates plausible-but-sometimes-suspicious transaction
// drafts for the fraud demo. A fraction of generated records is shaped to
// resemble anomalous activity (large amounts, unusual hours, backdating) so
// the downstream scoring service has something to flag.
package synth

import (
	"fmt"
	"time"

	"github.com/banking-fraud-console/internal/domain/transaction"
)

const (
	// suspicionProbability is the per-record chance that a draft is shaped
	// to look anomalous. Independent per record, not per batch.
	suspicionProbability = 0.2

	// Amount bounds for the two branches, in currency units.
	normalAmountMin      = 100.0
	normalAmountSpan     = 49_900.0
	suspiciousAmountMin  = 50_000.0
	suspiciousAmountSpan = 950_000.0

	unusualHourChance = 0.5
	backdateChance    = 0.3

	locationChance  = 0.7
	ipAddressChance = 0.6

	// Receiver minting retries before the disjoint-range fallback kicks in.
	maxReceiverAttempts = 10
)

var accountPrefixes = []string{"AC", "ACC", "ACC", "BANK"}

var locations = []string{
	"Mumbai, India",
	"Delhi, India",
	"Bangalore, India",
	"New York, USA",
	"London, UK",
	"Tokyo, Japan",
	"Singapore",
	"Dubai, UAE",
	"Sydney, Australia",
	"Toronto, Canada",
}

var ipRangePrefixes = []string{
	"192.168.1.",
	"10.0.0.",
	"172.16.0.",
	"203.0.113.",
	"198.51.100.",
}

// Generator fabricates one transaction draft per call. It holds no state
// between calls beyond its randomness source and clock.
type Generator struct {
	rnd Rand
	now func() time.Time
}

// NewGenerator creates a generator backed by the given randomness source.
// A nil source falls back to ambient randomness.
func NewGenerator(rnd Rand) *Generator {
	if rnd == nil {
		rnd = SystemRand()
	}
	return &Generator{
		rnd: rnd,
		now: time.Now,
	}
}

// Generate fabricates the draft at position index of a batch of size total.
// The index feeds the sender-account minting so identifiers stay unique even
// when an entire batch is generated within the same millisecond.
func (g *Generator) Generate(index, total int) transaction.Draft {
	now := g.now()
	millis := now.UnixMilli()

	suspicious := g.rnd.Float64() < suspicionProbability

	var amount float64
	if suspicious {
		amount = g.rnd.Float64()*suspiciousAmountSpan + suspiciousAmountMin
	} else {
		amount = g.rnd.Float64()*normalAmountSpan + normalAmountMin
	}
	amount = transaction.RoundAmount(amount)

	timestamp := g.timestamp(now, suspicious)

	transactionID := fmt.Sprintf("TXN%d%d%d", millis, g.rnd.IntN(10_000), index)

	sender := g.mintSenderAccount(millis, index)
	receiver := g.mintReceiverAccount(sender)

	draft := transaction.Draft{
		TransactionID:   transactionID,
		Timestamp:       timestamp.Format(transaction.TimestampLayout),
		Amount:          amount,
		Currency:        pick(g.rnd, transaction.Currencies()),
		SenderAccount:   sender,
		ReceiverAccount: receiver,
		TransactionType: pick(g.rnd, transaction.Types()),
		Channel:         pick(g.rnd, transaction.Channels()),
	}

	if g.rnd.Float64() < locationChance {
		draft.Location = pick(g.rnd, locations)
	}
	if g.rnd.Float64() < ipAddressChance {
		draft.IPAddress = fmt.Sprintf("%s%d", pick(g.rnd, ipRangePrefixes), g.rnd.IntN(255))
	}

	return draft
}

// timestamp places the transaction in time. Suspicious records sometimes land
// in the 02:00-04:59 window, occasionally backdated a few days to mimic a
// recurring pattern; everything else falls uniformly within the last 24 hours.
func (g *Generator) timestamp(now time.Time, suspicious bool) time.Time {
	if suspicious && g.rnd.Float64() < unusualHourChance {
		hour := 2 + g.rnd.IntN(3)
		ts := time.Date(now.Year(), now.Month(), now.Day(),
			hour, g.rnd.IntN(60), g.rnd.IntN(60), 0, now.Location())
		if g.rnd.Float64() < backdateChance {
			ts = ts.AddDate(0, 0, -g.rnd.IntN(7))
		}
		return ts
	}
	hoursAgo := g.rnd.Float64() * 24
	return now.Add(-time.Duration(hoursAgo * float64(time.Hour))).Truncate(time.Second)
}

// mintSenderAccount derives a fresh 8-digit sender identifier from wall-clock
// millis, the batch index, and a random perturbation so senders never repeat
// within a batch. Reusing senders would trip the backend's failed-attempt
// block threshold during demo runs.
func (g *Generator) mintSenderAccount(millis int64, index int) string {
	prefix := pick(g.rnd, accountPrefixes)
	uniqueID := millis + int64(index)*1000 + int64(g.rnd.IntN(1000))
	number := uniqueID%90_000_000 + 10_000_000
	return fmt.Sprintf("%s%d", prefix, number)
}

// mintReceiverAccount mints a receiver from the same prefix/number space,
// retrying on collision with the sender. After maxReceiverAttempts the number
// is drawn from a disjoint 9-digit range, so the fallback cannot collide.
func (g *Generator) mintReceiverAccount(sender string) string {
	for attempts := 0; attempts < maxReceiverAttempts; attempts++ {
		receiver := fmt.Sprintf("%s%d", pick(g.rnd, accountPrefixes), g.rnd.IntN(90_000_000)+10_000_000)
		if receiver != sender {
			return receiver
		}
	}
	return fmt.Sprintf("%s%d", pick(g.rnd, accountPrefixes), g.rnd.IntN(90_000_000)+100_000_000)
}

func pick[T any](rnd Rand, values []T) T {
	return values[rnd.IntN(len(values))]
}

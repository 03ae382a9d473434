package regime

import (
	"sync"

	"Conflux/internal/domain/models"
	domsvc "Conflux/internal/domain/service"
	"Conflux/internal/services/indicators"
)

// MinCandles is the minimum series length for a timeframe to contribute.
const MinCandles = 30

const historySize = 5

// TimeframeWeight assigns an importance weight to one timeframe's scores.
type TimeframeWeight struct {
	Timeframe string
	Weight    float64
}

// Config holds classifier tunables.
type Config struct {
	Timeframes []TimeframeWeight
	// ADX level considered a strong directional move.
	ADXStrong float64
	// ADX level below which the market is considered directionless.
	ADXWeak float64
	// ATR ratio vs. its recent average above which the market reads volatile.
	ATRExpansion float64
	// Volume ratio vs. recent average below which activity is considered low.
	VolumeQuiet float64
	// Smoothed output replaces the raw read when raw confidence is below this.
	SmoothingThreshold float64
	// UTC hours treated as off-hours, boosting the low-activity score.
	OffHoursUTC []int
}

// DefaultConfig mirrors the shipped tuning: mid timeframe dominates, the
// higher frame second, the lower frame least.
func DefaultConfig() Config {
	return Config{
		Timeframes: []TimeframeWeight{
			{Timeframe: "1h", Weight: 0.5},
			{Timeframe: "4h", Weight: 0.3},
			{Timeframe: "15m", Weight: 0.2},
		},
		ADXStrong:          25,
		ADXWeak:            20,
		ATRExpansion:       1.5,
		VolumeQuiet:        0.5,
		SmoothingThreshold: 0.8,
	}
}

type historyEntry struct {
	regime     models.RegimeType
	confidence float64
}

// Classifier scores snapshots against the four regime archetypes and smooths
// the output over a bounded history to avoid single-sample flapping. The
// history buffer is the only cross-call state.
type Classifier struct {
	cfg Config

	mu       sync.Mutex
	history  []historyEntry
	reported models.RegimeType
}

func NewClassifier(cfg Config) *Classifier {
	if len(cfg.Timeframes) == 0 {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// Reset clears the smoothing history. Used for deterministic replays.
func (c *Classifier) Reset() {
	c.mu.Lock()
	c.history = c.history[:0]
	c.reported = ""
	c.mu.Unlock()
}

// Classify scores each configured timeframe, sums importance-weighted scores
// per regime, and smooths the winner. Timeframes with fewer than MinCandles
// candles are skipped; if every timeframe is skipped the classification
// degrades to RANGING at 0.5 confidence.
func (c *Classifier) Classify(snapshot *models.MarketSnapshot) models.RegimeClassification {
	totals := map[models.RegimeType]float64{}
	var perTF []models.RegimeType
	contributed := 0

	for _, tw := range c.cfg.Timeframes {
		cs := snapshot.Series(tw.Timeframe)
		if len(cs) < MinCandles {
			continue
		}
		scores := c.scoreTimeframe(cs)
		for regime, s := range scores {
			totals[regime] += s * tw.Weight
		}
		tfWinner, _ := winner(scores)
		perTF = append(perTF, tfWinner)
		contributed++
	}

	if contributed == 0 {
		return models.RegimeClassification{
			Type:          models.RegimeRanging,
			Confidence:    0.5,
			RawType:       models.RegimeRanging,
			RawConfidence: 0.5,
			Degraded:      true,
		}
	}

	rawType, rawConf := winner(totals)
	out := c.smooth(rawType, rawConf)

	agree := 0
	for _, r := range perTF {
		if r == rawType {
			agree++
		}
	}
	out.TimeframeAgreement = float64(agree) / float64(contributed)
	return out
}

// scoreTimeframe computes the four archetype scores in [0,1] for one series.
func (c *Classifier) scoreTimeframe(cs []models.Candle) map[models.RegimeType]float64 {
	closes := indicators.Closes(cs)
	adx, _, _ := indicators.ADX(cs, 14)
	smaShort := indicators.SMA(closes, 9)
	smaMed := indicators.SMA(closes, 21)
	smaLong := indicators.SMA(closes, 50)

	// Trending: directional strength plus moving-average alignment.
	trending := 0.6 * indicators.Clamp(adx/(c.cfg.ADXStrong*1.6), 0, 1)
	if smaLong > 0 {
		if (smaShort > smaMed && smaMed > smaLong) || (smaShort < smaMed && smaMed < smaLong) {
			trending += 0.4
		} else if (smaShort > smaMed) == (smaMed > smaLong) {
			trending += 0.2
		}
	}

	// Ranging: weak ADX, compressed bands, closes confined mid-range.
	_, width := indicators.Bollinger(cs, 20)
	avgWidth := averageBandWidth(cs, 20, 5)
	compression := 0.0
	if avgWidth > 0 && width < avgWidth {
		compression = indicators.Clamp(1-width/avgWidth, 0, 1)
	}
	ranging := 0.4*indicators.Clamp(1-adx/c.cfg.ADXWeak, 0, 1) +
		0.3*compression +
		0.3*midRangeFraction(cs, 20)

	// Volatile: ATR expansion, band-width expansion, price gaps.
	atr := indicators.ATR(cs, 14)
	avgATR := averageATR(cs, 14, 5)
	volatile := 0.0
	if avgATR > 0 {
		volatile += 0.4 * indicators.Clamp(atr/avgATR/c.cfg.ATRExpansion, 0, 1)
	}
	if avgWidth > 0 {
		volatile += 0.3 * indicators.Clamp(width/avgWidth/c.cfg.ATRExpansion, 0, 1)
	}
	volatile += 0.3 * gapFraction(cs, 10)

	// Low activity: thin volume, optionally boosted during off-hours.
	lowActivity := 0.0
	avgVol := indicators.AvgVolume(cs, 20)
	recentVol := indicators.AvgVolume(cs, 5)
	if avgVol > 0 && recentVol/avgVol < c.cfg.VolumeQuiet {
		lowActivity = indicators.Clamp(1-recentVol/avgVol, 0, 1)
	}
	if lowActivity > 0 && c.isOffHours(cs[len(cs)-1]) {
		lowActivity = indicators.Clamp(lowActivity*1.3, 0, 1)
	}

	return map[models.RegimeType]float64{
		models.RegimeTrending:    indicators.Clamp(trending, 0, 1),
		models.RegimeRanging:     indicators.Clamp(ranging, 0, 1),
		models.RegimeVolatile:    indicators.Clamp(volatile, 0, 1),
		models.RegimeLowActivity: lowActivity,
	}
}

func (c *Classifier) isOffHours(last models.Candle) bool {
	h := last.Timestamp.UTC().Hour()
	for _, oh := range c.cfg.OffHoursUTC {
		if h == oh {
			return true
		}
	}
	return false
}

// smooth pushes the raw read into the history buffer and, when the raw
// confidence is weak and enough history exists, reports the historically
// most frequent regime at the mean buffered confidence instead.
func (c *Classifier) smooth(rawType models.RegimeType, rawConf float64) models.RegimeClassification {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.history = append(c.history, historyEntry{regime: rawType, confidence: rawConf})
	if len(c.history) > historySize {
		c.history = c.history[len(c.history)-historySize:]
	}

	out := models.RegimeClassification{
		Type:          rawType,
		Confidence:    rawConf,
		RawType:       rawType,
		RawConfidence: rawConf,
	}

	if rawConf >= c.cfg.SmoothingThreshold || len(c.history) < 3 {
		c.reported = out.Type
		return out
	}

	counts := map[models.RegimeType]int{}
	sum := 0.0
	for _, h := range c.history {
		counts[h.regime]++
		sum += h.confidence
	}
	best := rawType
	bestCount := 0
	for _, h := range c.history {
		if counts[h.regime] > bestCount {
			best = h.regime
			bestCount = counts[h.regime]
		}
	}
	// Sticky on ties: an even split must not displace the last reported type.
	if c.reported != "" && counts[c.reported] == bestCount {
		best = c.reported
	}
	out.Type = best
	out.Confidence = sum / float64(len(c.history))
	c.reported = best
	return out
}

// winner picks the top-scoring regime; confidence is the margin over the
// runner-up, 1.0 when only one candidate has any score.
func winner(totals map[models.RegimeType]float64) (models.RegimeType, float64) {
	order := []models.RegimeType{
		models.RegimeTrending,
		models.RegimeRanging,
		models.RegimeVolatile,
		models.RegimeLowActivity,
	}
	top, second := 0.0, 0.0
	best := models.RegimeRanging
	for _, r := range order {
		s := totals[r]
		if s > top {
			second = top
			top = s
			best = r
		} else if s > second {
			second = s
		}
	}
	if top == 0 {
		return models.RegimeRanging, 0.5
	}
	return best, (top - second) / top
}

func averageBandWidth(cs []models.Candle, period, samples int) float64 {
	if len(cs) < period+samples {
		return 0
	}
	sum := 0.0
	n := 0
	for i := 0; i < samples; i++ {
		end := len(cs) - i
		_, w := indicators.Bollinger(cs[:end], period)
		sum += w
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func averageATR(cs []models.Candle, period, samples int) float64 {
	if len(cs) < period+samples+1 {
		return 0
	}
	sum := 0.0
	n := 0
	for i := 0; i < samples; i++ {
		end := len(cs) - i
		sum += indicators.ATR(cs[:end], period)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// midRangeFraction is the share of recent closes confined to the middle half
// of the recent high-low range.
func midRangeFraction(cs []models.Candle, period int) float64 {
	if len(cs) < period {
		return 0
	}
	hi, lo := indicators.HighLow(cs, period)
	if hi <= lo {
		return 0
	}
	quarter := (hi - lo) / 4
	low, high := lo+quarter, hi-quarter
	inside := 0
	for _, c := range cs[len(cs)-period:] {
		if c.Close >= low && c.Close <= high {
			inside++
		}
	}
	return float64(inside) / float64(period)
}

// gapFraction is the share of consecutive candle pairs with an open/close gap
// larger than 0.1% of price.
func gapFraction(cs []models.Candle, period int) float64 {
	if len(cs) < period+1 {
		return 0
	}
	gaps := 0
	for i := len(cs) - period; i < len(cs); i++ {
		prev := cs[i-1].Close
		if prev == 0 {
			continue
		}
		gap := cs[i].Open - prev
		if gap < 0 {
			gap = -gap
		}
		if gap/prev > 0.001 {
			gaps++
		}
	}
	return float64(gaps) / float64(period)
}

var _ domsvc.RegimeClassifier = (*Classifier)(nil)

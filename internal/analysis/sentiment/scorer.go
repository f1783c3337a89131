// Package sentiment classifies short news text as Positive, Negative or Neutral.
package sentiment

import (
	"math"
	"strings"
	"unicode"

	"github.com/seenimoa/newsvani/pkg/models"
)

// Classifier maps text to a sentiment label. Implementations must be safe
// for concurrent use and hold no per-call state.
type Classifier interface {
	Classify(text string) models.Sentiment
}

// ClassifierFunc adapts an ordinary function to the Classifier interface.
type ClassifierFunc func(text string) models.Sentiment

// Classify calls f(text).
func (f ClassifierFunc) Classify(text string) models.Sentiment { return f(text) }

// Threshold is the compound score magnitude above which text stops being Neutral.
const Threshold = 0.05

// Label converts a compound polarity score in [-1, 1] to a sentiment label.
func Label(score float64) models.Sentiment {
	switch {
	case score > Threshold:
		return models.Positive
	case score < -Threshold:
		return models.Negative
	default:
		return models.Neutral
	}
}

// ------------------------------------------------------------------
// Finance lexicon scorer, selected with analysis.classifier: lexicon.
// A small market-news vocabulary on the VADER -4..+4 scale; the summed
// valence is squashed into -1..+1 with x/sqrt(x²+alpha).
// ------------------------------------------------------------------

const (
	normalizeAlpha = 15.0
	negationScalar = -0.74
	boosterIncr    = 0.293
	negationWindow = 3
)

// positive / negative single-word valences (lowercase).
var wordValence = map[string]float64{
	// positive
	"good": 1.9, "great": 3.1, "excellent": 2.7, "best": 3.2, "better": 1.9,
	"strong": 2.3, "stronger": 2.1, "gain": 2.4, "gains": 2.4, "growth": 2.3,
	"grow": 2.1, "grows": 2.1, "profit": 1.9, "profits": 1.9, "profitable": 1.9,
	"surge": 2.2, "surges": 2.2, "surged": 2.2, "soar": 2.4, "soars": 2.4,
	"jump": 1.5, "jumps": 1.5, "jumped": 1.5, "rally": 2.0, "rallies": 2.0,
	"rise": 1.2, "rises": 1.2, "rose": 1.2, "up": 0.8, "record": 1.2,
	"win": 2.8, "wins": 2.7, "won": 2.7, "success": 2.7, "successful": 2.8,
	"bullish": 2.6, "upbeat": 2.0, "positive": 2.6, "optimistic": 2.3,
	"upgrade": 2.0, "upgrades": 2.0, "upgraded": 2.0, "outperform": 2.0,
	"beat": 1.6, "beats": 1.6, "exceeds": 1.8, "boost": 1.7, "boosts": 1.7,
	"recovery": 1.8, "recover": 1.6, "breakthrough": 2.4, "innovative": 2.0,
	"expansion": 1.5, "expand": 1.3, "dividend": 1.2, "approve": 1.6,
	"approved": 1.8, "launch": 0.9, "launches": 0.9, "partnership": 1.4,
	"love": 3.2, "happy": 2.7, "confident": 2.2, "confidence": 2.3,
	"benefit": 2.0, "benefits": 1.9, "improve": 1.9, "improved": 2.1,
	"improves": 1.9, "opportunity": 1.8, "opportunities": 1.6, "secure": 1.4,
	"robust": 1.9, "accumulate": 1.2, "buy": 0.9, "top": 0.8, "lead": 0.9,
	"leading": 1.0, "award": 2.5, "celebrate": 2.7, "praise": 2.6,

	// negative
	"bad": -2.5, "worse": -2.1, "worst": -3.1, "weak": -1.9, "weaker": -1.9,
	"loss": -1.3, "losses": -1.7, "lose": -1.7, "loses": -1.3, "lost": -1.3,
	"fall": -1.3, "falls": -1.3, "fell": -1.3, "drop": -1.1, "drops": -1.1,
	"dropped": -1.1, "decline": -1.5, "declines": -1.5, "declined": -1.5,
	"plunge": -2.2, "plunges": -2.2, "plunged": -2.2, "slump": -2.0,
	"slumps": -2.0, "crash": -2.6, "crashes": -2.6, "crashed": -2.6,
	"selloff": -2.0, "sell": -0.8, "bearish": -2.4, "negative": -2.7,
	"downgrade": -2.0, "downgrades": -2.0, "downgraded": -2.0,
	"underperform": -2.0, "miss": -1.2, "misses": -1.2, "missed": -1.2,
	"cut": -1.1, "cuts": -1.1, "layoffs": -2.0, "layoff": -2.0,
	"fraud": -3.0, "scam": -2.9, "lawsuit": -1.8, "sue": -1.8, "sued": -1.9,
	"investigation": -1.2, "probe": -1.3, "fined": -1.9,
	"penalty": -1.9, "recall": -1.5, "recalls": -1.5, "default": -2.1,
	"bankrupt": -2.8, "bankruptcy": -2.8, "warning": -1.4, "warns": -1.4,
	"concern": -1.3, "concerns": -1.3, "risk": -1.1, "risks": -1.1,
	"fear": -2.2, "fears": -2.2, "crisis": -3.1, "problem": -1.7,
	"problems": -1.7, "fail": -2.5, "fails": -2.3, "failed": -2.3,
	"failure": -2.4, "struggle": -1.9, "struggles": -1.9, "delay": -1.3,
	"delays": -1.3, "delayed": -1.3, "slow": -1.0, "slowdown": -1.5,
	"hit": -0.8, "hurt": -2.4, "damage": -2.2, "angry": -2.3,
	"controversy": -1.8, "criticism": -1.9, "criticized": -1.9,
	"volatile": -1.1, "uncertainty": -1.4, "debt": -1.5, "resign": -1.2,
	"resigns": -1.2, "ban": -2.1, "banned": -2.0, "halt": -1.1,
}

// multi-word phrases checked against the lowercased text before word scoring.
var phraseValence = map[string]float64{
	"record high":    2.5,
	"all-time high":  2.5,
	"beats estimate": 2.2,
	"record low":     -2.5,
	"profit warning": -2.6,
	"job cuts":       -2.2,
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "nor": true,
	"without": true, "cannot": true, "isn't": true, "wasn't": true,
	"aren't": true, "doesn't": true, "didn't": true, "don't": true,
	"won't": true, "hasn't": true, "haven't": true,
}

var boosters = map[string]bool{
	"very": true, "extremely": true, "significantly": true, "sharply": true,
	"strongly": true, "highly": true, "hugely": true, "massively": true,
}

// Lexicon scores text with the built-in finance dictionary and classifies it
// with Label. The zero value is ready to use.
type Lexicon struct{}

// NewLexicon returns the finance lexicon classifier.
func NewLexicon() Lexicon { return Lexicon{} }

// Classify implements Classifier.
func (Lexicon) Classify(text string) models.Sentiment {
	return Label(Compound(text))
}

// Compound returns the normalized polarity of text in [-1, 1].
// Text without any lexicon hit scores 0.
func Compound(text string) float64 {
	lower := strings.ToLower(text)

	sum := 0.0
	for phrase, v := range phraseValence {
		if n := strings.Count(lower, phrase); n > 0 {
			sum += v * float64(n)
			lower = strings.ReplaceAll(lower, phrase, " ")
		}
	}

	tokens := tokenize(lower)
	for i, tok := range tokens {
		v, ok := wordValence[tok]
		if !ok {
			continue
		}
		if i > 0 && boosters[tokens[i-1]] {
			if v > 0 {
				v += boosterIncr
			} else {
				v -= boosterIncr
			}
		}
		if negatedBefore(tokens, i) {
			v *= negationScalar
		}
		sum += v
	}

	return normalize(sum)
}

// negatedBefore reports whether a negation word appears in the window before i.
func negatedBefore(tokens []string, i int) bool {
	start := i - negationWindow
	if start < 0 {
		start = 0
	}
	for _, t := range tokens[start:i] {
		if negations[t] {
			return true
		}
	}
	return false
}

func normalize(sum float64) float64 {
	if sum == 0 {
		return 0
	}
	score := sum / math.Sqrt(sum*sum+normalizeAlpha)
	return math.Max(-1, math.Min(1, score))
}

// tokenize splits lowercased text into words, keeping inner apostrophes and hyphens.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-')
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

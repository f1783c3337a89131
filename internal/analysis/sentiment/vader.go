package sentiment

import (
	"fmt"
	"strings"
	"sync"

	"github.com/jonreiter/govader"

	"github.com/seenimoa/newsvani/pkg/models"
)

// Classifier names accepted by New.
const (
	NameVader   = "vader"
	NameLexicon = "lexicon"
)

var (
	vaderOnce sync.Once
	vaderSIA  *govader.SentimentIntensityAnalyzer
)

// analyzer loads the VADER lexicon once per process; PolarityScores only
// reads it afterwards.
func analyzer() *govader.SentimentIntensityAnalyzer {
	vaderOnce.Do(func() { vaderSIA = govader.NewSentimentIntensityAnalyzer() })
	return vaderSIA
}

// Vader labels text with the VADER compound score and Label.
type Vader struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVader returns the default classifier.
func NewVader() *Vader { return &Vader{sia: analyzer()} }

// Compound returns the VADER compound polarity of text in [-1, 1].
func (v *Vader) Compound(text string) float64 {
	return v.sia.PolarityScores(text).Compound
}

// Classify implements Classifier.
func (v *Vader) Classify(text string) models.Sentiment {
	return Label(v.Compound(text))
}

// New returns the classifier registered under name. An empty name selects VADER.
func New(name string) (Classifier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameVader:
		return NewVader(), nil
	case NameLexicon:
		return NewLexicon(), nil
	default:
		return nil, fmt.Errorf("unknown sentiment classifier %q", name)
	}
}

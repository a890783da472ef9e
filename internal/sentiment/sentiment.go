// Package sentiment labels review comments from the star rating and a small
// keyword lexicon.
package sentiment

import (
	"strings"

	"github.com/Clark-Hu/cinema-pulse/internal/domain"
	"github.com/Clark-Hu/cinema-pulse/internal/rating"
)

var positiveWords = []string{
	"amazing", "excellent", "great", "wonderful", "fantastic", "love",
	"brilliant", "masterpiece", "perfect", "incredible", "outstanding",
	"superb", "awesome", "best", "loved", "enjoyed", "recommended",
}

var negativeWords = []string{
	"terrible", "awful", "horrible", "worst", "bad", "disappointing",
	"waste", "boring", "poor", "hate", "disappointed", "regret", "skip", "avoid",
}

// keywordMargin is how far one side's keyword count must lead the other to
// override the rating.
const keywordMargin = 2

// Analysis is the outcome of Classify.
type Analysis struct {
	Sentiment  domain.Sentiment
	Confidence float64
	Positive   int
	Negative   int
}

// Classify labels a comment. The rating decides unless the comment's
// keywords lean clearly one way. Keywords match as substrings.
func Classify(comment string, stars int) Analysis {
	var out Analysis
	switch {
	case stars >= 4:
		out.Sentiment, out.Confidence = domain.SentimentPositive, 0.7
	case stars == 3:
		out.Sentiment, out.Confidence = domain.SentimentNeutral, 0.6
	default:
		out.Sentiment, out.Confidence = domain.SentimentNegative, 0.7
	}

	lower := strings.ToLower(comment)
	out.Positive = count(lower, positiveWords)
	out.Negative = count(lower, negativeWords)

	switch {
	case out.Positive > out.Negative+keywordMargin:
		out.Sentiment = domain.SentimentPositive
		out.Confidence = boost(out.Confidence)
	case out.Negative > out.Positive+keywordMargin:
		out.Sentiment = domain.SentimentNegative
		out.Confidence = boost(out.Confidence)
	}
	return out
}

func count(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func boost(c float64) float64 {
	return rating.Round1(min(0.9, c+0.2))
}

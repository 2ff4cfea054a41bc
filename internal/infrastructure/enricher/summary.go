package enricher

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

const minWordLen = 3

var (
	stopOnce  sync.Once
	stopWords map[string]struct{}
)

// Initialize builds the stop-word table used by the extractive summarizer.
// It is idempotent and safe for concurrent use.
func Initialize() {
	stopOnce.Do(func() {
		stopWords = make(map[string]struct{}, len(stopWordList))
		for _, w := range strings.Fields(stopWordList) {
			stopWords[w] = struct{}{}
		}
	})
}

// Summarize picks the n highest scoring sentences of text and returns them in
// their original order. Sentences are scored by the average frequency of
// their significant words; words from title weigh more.
func Summarize(title, text string, n int) string {
	Initialize()

	sentences := splitSentences(text)
	if n <= 0 || len(sentences) == 0 {
		return ""
	}
	if len(sentences) <= n {
		return strings.Join(sentences, " ")
	}

	freq := map[string]float64{}
	for _, s := range sentences {
		for _, w := range keywords(s) {
			freq[w]++
		}
	}
	for _, w := range keywords(title) {
		freq[w] *= 1.5
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, 0, len(sentences))
	for i, s := range sentences {
		words := keywords(s)
		if len(words) == 0 {
			ranked = append(ranked, scored{index: i})
			continue
		}
		var total float64
		for _, w := range words {
			total += freq[w]
		}
		ranked = append(ranked, scored{index: i, score: total / float64(len(words))})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	picked := ranked[:n]
	sort.Slice(picked, func(i, j int) bool {
		return picked[i].index < picked[j].index
	})

	out := make([]string, 0, n)
	for _, p := range picked {
		out = append(out, sentences[p.index])
	}
	return strings.Join(out, " ")
}

// splitSentences cuts text after ., ! or ? followed by whitespace.
func splitSentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)
	runes := []rune(text)
	flush := func() {
		s := strings.Join(strings.Fields(current.String()), " ")
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for i, r := range runes {
		current.WriteRune(r)
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			flush()
		}
	}
	flush()

	return sentences
}

func keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < minWordLen {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

const stopWordList = `
a about above after again against all also am an and any are as at be because been
before being below between both but by can could did do does doing down during each
few for from further had has have having he her here hers herself him himself his how
i if in into is it its itself just let me more most my myself no nor not now of off on
once only or other our ours ourselves out over own same she should so some such than
that the their theirs them themselves then there these they this those through to too
under until up very was we were what when where which while who whom why will with
would you your yours yourself yourselves said says say new one two year years also
`

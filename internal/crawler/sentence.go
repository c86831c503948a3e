package crawler

import "strings"

// sentenceTerminators end a sentence.
const sentenceTerminators = ".!?"

// ExtractSentence returns the sentence that introduces name in paragraphs.
//
// The first paragraph containing name is split into sentences at '.', '!'
// and '?'; the first sentence containing name is returned trimmed, with its
// terminator. The second result is false if no paragraph mentions name or
// name is empty.
func ExtractSentence(paragraphs []string, name string) (string, bool) {
	if name == "" {
		return "", false
	}

	for _, paragraph := range paragraphs {
		if !strings.Contains(paragraph, name) {
			continue
		}

		start := 0
		for start < len(paragraph) {
			end := strings.IndexAny(paragraph[start:], sentenceTerminators)
			var sentence string
			if end < 0 {
				sentence = paragraph[start:]
				start = len(paragraph)
			} else {
				sentence = paragraph[start : start+end+1]
				start += end + 1
			}
			if strings.Contains(sentence, name) {
				return finishSentence(sentence), true
			}
		}

		// The name spans a terminator, e.g. "J. Smith". Fall back to the
		// whole paragraph rather than to a later one.
		return finishSentence(paragraph), true
	}

	return "", false
}

// finishSentence trims s and makes sure it ends with a terminator.
func finishSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if !strings.ContainsRune(sentenceTerminators, rune(s[len(s)-1])) {
		s += "."
	}
	return s
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textstat counts words, sentences and syllables and scores
// readability with the Flesch Reading Ease formula.
package textstat

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	wordPattern     = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)
	sentenceEndings = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// Words returns the word tokens of text. Punctuation and Markdown markup are dropped.
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// WordCount is len(Words(text)).
func WordCount(text string) int {
	return len(Words(text))
}

// Sentences splits text on terminal punctuation. A trailing fragment
// without punctuation still counts as a sentence.
func Sentences(text string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEndings.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start:loc[1]]); hasWord(s) {
			out = append(out, s)
		}
		start = loc[1]
	}
	if s := strings.TrimSpace(text[start:]); hasWord(s) {
		out = append(out, s)
	}
	return out
}

// Syllables estimates syllables in one word by counting vowel groups
// (y counts as a vowel), dropping a silent trailing e, minimum 1.
func Syllables(word string) int {
	w := strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range w {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(w, "e") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}

// FleschReadingEase returns 206.835 - 1.015*(words/sentences) - 84.6*(syllables/words).
// It returns 0 when text has no words or no sentences.
func FleschReadingEase(text string) float64 {
	words := Words(text)
	sentences := len(Sentences(text))
	if len(words) == 0 || sentences == 0 {
		return 0
	}
	syllables := 0
	for _, w := range words {
		syllables += Syllables(w)
	}
	wc := float64(len(words))
	return 206.835 - 1.015*(wc/float64(sentences)) - 84.6*(float64(syllables)/wc)
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func hasWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}) >= 0
}

// Package matcher is a small token-window matcher: text is split into word
// tokens and fixed rules of literal / number / unit constraints are tested
// against every window.
package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one word-level piece of the input.
type Token struct {
	Text    string // surface form
	Lower   string
	LikeNum bool
	Offset  int // byte offset into the tokenized text
}

const (
	leadingPunct  = `([{"'`
	trailingPunct = `)]}.,;:!?"'`
)

var numberWords = map[string]struct{}{
	"zero": {}, "one": {}, "two": {}, "three": {}, "four": {}, "five": {}, "six": {},
	"seven": {}, "eight": {}, "nine": {}, "ten": {}, "eleven": {}, "twelve": {},
	"thirteen": {}, "fourteen": {}, "fifteen": {}, "sixteen": {}, "seventeen": {},
	"eighteen": {}, "nineteen": {}, "twenty": {}, "thirty": {}, "forty": {}, "fifty": {},
	"sixty": {}, "seventy": {}, "eighty": {}, "ninety": {}, "hundred": {}, "thousand": {},
	"million": {}, "billion": {},
}

// Tokenize splits on whitespace and peels enclosing punctuation off each word
// into tokens of its own. Inner punctuation stays, so "mg/dl" and "95.5" are
// single tokens.
func Tokenize(text string) []Token {
	var tokens []Token
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(text) {
			r, size = utf8.DecodeRuneInString(text[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		tokens = appendWord(tokens, text[start:i], start)
	}
	return tokens
}

func appendWord(tokens []Token, word string, offset int) []Token {
	for len(word) > 1 && strings.IndexByte(leadingPunct, word[0]) >= 0 {
		tokens = append(tokens, newToken(word[:1], offset))
		word = word[1:]
		offset++
	}

	var tail []Token
	for len(word) > 1 && strings.IndexByte(trailingPunct, word[len(word)-1]) >= 0 {
		end := len(word) - 1
		tail = append(tail, newToken(word[end:], offset+end))
		word = word[:end]
	}

	tokens = append(tokens, newToken(word, offset))
	for i := len(tail) - 1; i >= 0; i-- {
		tokens = append(tokens, tail[i])
	}
	return tokens
}

func newToken(text string, offset int) Token {
	return Token{
		Text:    text,
		Lower:   strings.ToLower(text),
		LikeNum: LikeNum(text),
		Offset:  offset,
	}
}

// LikeNum reports whether s reads as a number: digits with optional sign and
// , or . separators, a digit fraction like 1/2, or an English number word.
func LikeNum(s string) bool {
	if s == "" {
		return false
	}
	t := strings.TrimLeft(s, "+-")
	if digitsOnly(strings.NewReplacer(",", "", ".", "").Replace(t)) {
		return true
	}
	if num, den, ok := strings.Cut(t, "/"); ok && digitsOnly(num) && digitsOnly(den) {
		return true
	}
	_, ok := numberWords[strings.ToLower(s)]
	return ok
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

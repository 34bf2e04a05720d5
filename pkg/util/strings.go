package util

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string of length n.
func GenerateRandStringWithUpperLowerNum(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(randCharset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			sb.WriteByte(randCharset[0])
			continue
		}
		sb.WriteByte(randCharset[idx.Int64()])
	}
	return sb.String()
}

var jsonCodeBlockRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText tries to find the largest JSON object/array in the text.
// LLMs often wrap JSON in markdown code fences or surround it with prose.
func ExtractJsonFromText(text string) string {
	if matches := jsonCodeBlockRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := -1
	for i, r := range text {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start == -1 {
		return text
	}

	end := strings.LastIndexAny(text, "}]")
	if end <= start {
		return text
	}
	return text[start : end+1]
}

// SplitCaptionLines breaks caption text into subtitle-friendly lines of at
// most maxLen characters, splitting on word boundaries.
func SplitCaptionLines(text string, maxLen int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current []string
	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if len(candidate) <= maxLen || len(current) == 0 {
			current = append(current, word)
			continue
		}
		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// Package wordpiece implements BERT-style WordPiece tokenization from a
// HuggingFace tokenizer.json vocabulary. It is shared by the ONNX embedder
// and the ONNX cross-encoder scorer.
package wordpiece

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Standard BERT special token IDs.
const (
	unkTokenID = 100 // [UNK]
	clsTokenID = 101 // [CLS]
	sepTokenID = 102 // [SEP]
)

// Tokenizer maps lowercase text to BERT vocabulary IDs.
type Tokenizer struct {
	vocab map[string]int
}

// Load reads the vocabulary from a tokenizer.json file.
func Load(path string) (*Tokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tokenizer: %w", err)
	}

	var tokenizerData struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &tokenizerData); err != nil {
		return nil, fmt.Errorf("parse tokenizer: %w", err)
	}
	if len(tokenizerData.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer %s has empty vocabulary", path)
	}

	return &Tokenizer{vocab: tokenizerData.Model.Vocab}, nil
}

// NewFromVocab builds a tokenizer from an in-memory vocabulary, used by
// tests.
func NewFromVocab(vocab map[string]int) *Tokenizer {
	return &Tokenizer{vocab: vocab}
}

// Tokenize converts text to vocabulary IDs, lowercasing and stripping edge
// punctuation the way uncased BERT models expect.
func (t *Tokenizer) Tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}

		if id, ok := t.vocab[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}

		for _, subword := range t.wordPiece(word) {
			if id, ok := t.vocab[subword]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, unkTokenID)
			}
		}
	}
	return tokens
}

// Encoding is a fixed-length model input built from one or two text
// segments.
type Encoding struct {
	InputIDs      []int64
	AttentionMask []int64
	TokenTypeIDs  []int64
}

// Encode builds "[CLS] a [SEP]" (b empty) or "[CLS] a [SEP] b [SEP]"
// padded to maxLen. Segment b carries token type 1, as in BERT sentence-pair
// inputs; DistilBERT-style models simply ignore TokenTypeIDs.
func (t *Tokenizer) Encode(a, b string, maxLen int) Encoding {
	enc := Encoding{
		InputIDs:      make([]int64, maxLen),
		AttentionMask: make([]int64, maxLen),
		TokenTypeIDs:  make([]int64, maxLen),
	}

	tokensA := t.Tokenize(a)
	tokensB := t.Tokenize(b)

	// Reserve room for [CLS] and one [SEP] per segment.
	specials := 2
	if len(tokensB) > 0 {
		specials = 3
	}
	budget := maxLen - specials
	if len(tokensA) > budget {
		tokensA = tokensA[:budget]
	}
	if len(tokensB) > budget-len(tokensA) {
		tokensB = tokensB[:budget-len(tokensA)]
	}

	pos := 0
	put := func(id int64, segment int64) {
		enc.InputIDs[pos] = id
		enc.AttentionMask[pos] = 1
		enc.TokenTypeIDs[pos] = segment
		pos++
	}

	put(clsTokenID, 0)
	for _, id := range tokensA {
		put(id, 0)
	}
	put(sepTokenID, 0)
	if len(tokensB) > 0 {
		for _, id := range tokensB {
			put(id, 1)
		}
		put(sepTokenID, 1)
	}

	return enc
}

// wordPiece splits an out-of-vocabulary word into the longest matching
// subwords, prefixing continuations with "##".
func (t *Tokenizer) wordPiece(word string) []string {
	var subwords []string
	start := 0

	for start < len(word) {
		end := len(word)
		found := false

		for end > start {
			substr := word[start:end]
			if start > 0 {
				substr = "##" + substr
			}
			if _, ok := t.vocab[substr]; ok {
				subwords = append(subwords, substr)
				start = end
				found = true
				break
			}
			end--
		}

		if !found {
			subwords = append(subwords, "[UNK]")
			start++
		}
	}

	return subwords
}

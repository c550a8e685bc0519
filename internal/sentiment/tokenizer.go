package sentiment

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// WordPieceTokenizer implements the BERT-style tokenization the
// sentiment model was exported with: whitespace split, lowercasing,
// greedy longest-match subword lookup with "##" continuations.
type WordPieceTokenizer struct {
	vocab        map[string]int64
	clsID        int64
	sepID        int64
	padID        int64
	unkID        int64
	continuation string
}

// LoadWordPieceTokenizer builds the tokenizer from a vocab.txt file,
// one token per line, line number as id.
func LoadWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var idx int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		vocab[token] = idx
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan vocab: %w", err)
	}

	return &WordPieceTokenizer{
		vocab:        vocab,
		continuation: "##",
		clsID:        vocab["[CLS]"],
		sepID:        vocab["[SEP]"],
		padID:        vocab["[PAD]"],
		unkID:        vocab["[UNK]"],
	}, nil
}

// Encode converts text into token ids and an attention mask, both of
// length seqLen. Long inputs are truncated; short inputs are padded.
func (t *WordPieceTokenizer) Encode(text string, seqLen int) ([]int64, []int64) {
	if seqLen <= 0 {
		return nil, nil
	}

	tokens := []int64{t.clsID}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		tokens = append(tokens, t.wordPiece(w)...)
		if len(tokens) >= seqLen-1 {
			tokens = tokens[:seqLen-1]
			break
		}
	}
	tokens = append(tokens, t.sepID)

	attn := make([]int64, seqLen)
	for i := 0; i < len(tokens); i++ {
		attn[i] = 1
	}
	for len(tokens) < seqLen {
		tokens = append(tokens, t.padID)
	}

	return tokens, attn
}

// wordPiece splits one word into the longest vocab subwords, falling
// back to [UNK] when no decomposition exists.
func (t *WordPieceTokenizer) wordPiece(word string) []int64 {
	if id, ok := t.vocab[word]; ok {
		return []int64{id}
	}

	var pieces []int64
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			sub := word[start:end]
			if start > 0 {
				sub = t.continuation + sub
			}
			if id, ok := t.vocab[sub]; ok {
				pieces = append(pieces, id)
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			return []int64{t.unkID}
		}
	}
	return pieces
}

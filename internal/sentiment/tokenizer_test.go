package sentiment

import (
	"os"
	"path/filepath"
	"testing"
)

func writeVocab(t *testing.T, tokens ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vocab.txt")
	data := ""
	for _, tok := range tokens {
		data += tok + "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write vocab: %v", err)
	}
	return path
}

func TestEncodeBasic(t *testing.T) {
	// ids: [PAD]=0 [UNK]=1 [CLS]=2 [SEP]=3 good=4 movie=5 ##s=6
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "good", "movie", "##s")
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, attn := tok.Encode("Good movies", 8)
	want := []int64{2, 4, 5, 6, 3, 0, 0, 0}
	wantAttn := []int64{1, 1, 1, 1, 1, 0, 0, 0}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids[%d] = %d, want %d (full %v)", i, ids[i], want[i], ids)
		}
		if attn[i] != wantAttn[i] {
			t.Fatalf("attn[%d] = %d, want %d", i, attn[i], wantAttn[i])
		}
	}
}

func TestEncodeUnknownWord(t *testing.T) {
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "good")
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, _ := tok.Encode("zzz", 5)
	if ids[1] != 1 {
		t.Fatalf("expected [UNK] id 1, got %d", ids[1])
	}
}

func TestEncodeTruncates(t *testing.T) {
	path := writeVocab(t, "[PAD]", "[UNK]", "[CLS]", "[SEP]", "good")
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatalf("load tokenizer: %v", err)
	}

	ids, attn := tok.Encode("good good good good good good", 4)
	if len(ids) != 4 || len(attn) != 4 {
		t.Fatalf("expected fixed length 4, got %d/%d", len(ids), len(attn))
	}
	if ids[0] != 2 || ids[3] != 3 {
		t.Fatalf("expected [CLS] first and [SEP] last, got %v", ids)
	}
}

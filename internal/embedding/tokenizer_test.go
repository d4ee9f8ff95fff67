package embedding

import (
	"reflect"
	"testing"
)

func TestWords(t *testing.T) {
	got := Words("Hello, World! It's 2024 - नमस्ते दुनिया")
	want := []string{"hello", "world", "it", "s", "2024", "नमस्ते", "दुनिया"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Words = %q, want %q", got, want)
	}
}

func TestHashTokenizer(t *testing.T) {
	ids, mask, types := HashTokenizer{}.Tokenize("one two three", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(mask), len(types))
	}
	if ids[0] != clsToken || ids[4] != sepToken {
		t.Errorf("special tokens misplaced: %v", ids)
	}
	for i := 1; i <= 3; i++ {
		if ids[i] < 1000 || ids[i] >= vocabSize {
			t.Errorf("token %d out of range: %d", i, ids[i])
		}
	}
	if mask[4] != 1 || mask[5] != 0 {
		t.Errorf("mask: %v", mask)
	}

	ids, _, _ = HashTokenizer{}.Tokenize("a b c d e f g h i j", 4)
	if ids[3] != sepToken {
		t.Errorf("truncated input should end with SEP: %v", ids)
	}
}

func TestHashString_stable(t *testing.T) {
	if HashString("coach") != HashString("coach") {
		t.Error("hash not deterministic")
	}
	if HashString("coach") == HashString("mentor") {
		t.Error("unexpected collision")
	}
}

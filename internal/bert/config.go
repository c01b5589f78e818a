// Package bert implements a BERT-style transformer encoder for
// masked-language-model and next-sentence-prediction pretraining.
//
// All activations use the feature-first layout: hidden states are
// [embed, seq, batch], attention scores are [seq, seq, heads*batch], and
// logits are class-first. Layers are built from the nn package and record
// gradients through whatever backend they are constructed with.
package bert

import "fmt"

// Config holds the hyperparameters of the model. Every sub-layer
// constructor reads only the fields it needs.
type Config struct {
	VocabSize      int     // vocabulary size V
	EmbedSize      int     // hidden size E
	MaxSeqLen      int     // positional embedding table size
	SeqLen         int     // sequence length S used during pretraining
	NumSegment     int     // segment vocabulary size (2 for sentence A/B)
	NumHeads       int     // attention heads N
	NumEncoder     int     // stacked encoder blocks
	FFHiddenSize   int     // feed-forward inner size
	PDrop          float32 // dropout probability for embeddings/FFN/output
	AttentionPDrop float32 // dropout probability for attention weights
	Activation     string  // feed-forward activation ("gelu", "relu", ...)
	BatchSize      int     // batch size B used during pretraining
}

// NewBaseConfig returns the standard base-sized configuration
// (110M-parameter scale: 30522 vocab, 768 hidden, 12 heads, 12 blocks).
func NewBaseConfig() *Config {
	return &Config{
		VocabSize:      30522,
		EmbedSize:      768,
		MaxSeqLen:      512,
		SeqLen:         128,
		NumSegment:     2,
		NumHeads:       12,
		NumEncoder:     12,
		FFHiddenSize:   3072,
		PDrop:          0.1,
		AttentionPDrop: 0.1,
		Activation:     "gelu",
		BatchSize:      32,
	}
}

// Validate panics with a descriptive message if the configuration cannot
// produce a well-formed model. Head-geometry checks live in the
// SelfAttention constructor; this catches the remaining obvious mistakes.
func (c *Config) Validate() {
	if c.VocabSize <= 0 {
		panic(fmt.Sprintf("bert: vocab size must be positive, got %d", c.VocabSize))
	}
	if c.EmbedSize <= 0 {
		panic(fmt.Sprintf("bert: embed size must be positive, got %d", c.EmbedSize))
	}
	if c.NumHeads <= 0 {
		panic(fmt.Sprintf("bert: num heads must be positive, got %d", c.NumHeads))
	}
	if c.NumEncoder <= 0 {
		panic(fmt.Sprintf("bert: num encoder blocks must be positive, got %d", c.NumEncoder))
	}
	if c.MaxSeqLen <= 0 {
		panic(fmt.Sprintf("bert: max seq len must be positive, got %d", c.MaxSeqLen))
	}
	if c.PDrop < 0 || c.PDrop >= 1 {
		panic(fmt.Sprintf("bert: dropout probability must be in [0, 1), got %v", c.PDrop))
	}
	if c.AttentionPDrop < 0 || c.AttentionPDrop >= 1 {
		panic(fmt.Sprintf("bert: attention dropout probability must be in [0, 1), got %v", c.AttentionPDrop))
	}
}

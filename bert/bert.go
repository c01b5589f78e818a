// Copyright 2025 Loam ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package bert provides the public API for the BERT-style transformer
// encoder and its pretraining heads.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	cfg := bert.NewBaseConfig()
//	model := bert.NewBertPreTraining(cfg, backend)
//
//	backend.Tape().StartRecording()
//	out := model.Forward(tokenIDs, segmentIDs, nil, mlmLabels, nspLabels)
//	grads := autodiff.Backward(out.Loss, backend)
package bert

import (
	"github.com/loam-ml/loam/internal/bert"
	"github.com/loam-ml/loam/internal/tensor"
)

// Config holds the model hyperparameters.
type Config = bert.Config

// NewBaseConfig returns the standard base-sized configuration.
func NewBaseConfig() *Config {
	return bert.NewBaseConfig()
}

// MLMIgnoreIndex marks unmasked positions in MLM labels.
const MLMIgnoreIndex = bert.MLMIgnoreIndex

// EmbedLayer composes token, position, and segment embeddings with
// layer normalization and dropout.
type EmbedLayer[B tensor.Backend] = bert.EmbedLayer[B]

// NewEmbedLayer creates the embedding stack.
func NewEmbedLayer[B tensor.Backend](cfg *Config, backend B) *EmbedLayer[B] {
	return bert.NewEmbedLayer(cfg, backend)
}

// SelfAttention is multi-head scaled dot-product attention.
type SelfAttention[B tensor.Backend] = bert.SelfAttention[B]

// NewSelfAttention creates a multi-head attention layer. Panics on
// invalid head geometry.
func NewSelfAttention[B tensor.Backend](cfg *Config, backend B) *SelfAttention[B] {
	return bert.NewSelfAttention(cfg, backend)
}

// FeedForward is the position-wise two-layer transformation.
type FeedForward[B tensor.Backend] = bert.FeedForward[B]

// NewFeedForward creates the feed-forward block.
func NewFeedForward[B tensor.Backend](cfg *Config, backend B) *FeedForward[B] {
	return bert.NewFeedForward(cfg, backend)
}

// Encoder is one transformer block with post-residual layer norms.
type Encoder[B tensor.Backend] = bert.Encoder[B]

// NewEncoder creates one encoder block.
func NewEncoder[B tensor.Backend](cfg *Config, backend B) *Encoder[B] {
	return bert.NewEncoder(cfg, backend)
}

// Bert is the embedding stack plus the encoder blocks.
type Bert[B tensor.Backend] = bert.Bert[B]

// NewBert builds the encoder model from the configuration.
func NewBert[B tensor.Backend](cfg *Config, backend B) *Bert[B] {
	return bert.NewBert(cfg, backend)
}

// Pooler projects the CLS position through Linear and tanh.
type Pooler[B tensor.Backend] = bert.Pooler[B]

// NewPooler creates the pooler.
func NewPooler[B tensor.Backend](cfg *Config, backend B) *Pooler[B] {
	return bert.NewPooler(cfg, backend)
}

// NSPHead produces next-sentence-prediction logits.
type NSPHead[B tensor.Backend] = bert.NSPHead[B]

// NewNSPHead creates the NSP classification head.
func NewNSPHead[B tensor.Backend](cfg *Config, backend B) *NSPHead[B] {
	return bert.NewNSPHead(cfg, backend)
}

// MLMHead produces per-position vocabulary logits.
type MLMHead[B tensor.Backend] = bert.MLMHead[B]

// NewMLMHead creates the masked-language-model head.
func NewMLMHead[B tensor.Backend](cfg *Config, backend B) *MLMHead[B] {
	return bert.NewMLMHead(cfg, backend)
}

// BertPreTraining composes Bert with both pretraining heads.
type BertPreTraining[B tensor.Backend] = bert.BertPreTraining[B]

// PreTrainingOutput bundles the logits and losses of one forward pass.
type PreTrainingOutput[B tensor.Backend] = bert.PreTrainingOutput[B]

// NewBertPreTraining builds the full pretraining model.
func NewBertPreTraining[B tensor.Backend](cfg *Config, backend B) *BertPreTraining[B] {
	return bert.NewBertPreTraining(cfg, backend)
}

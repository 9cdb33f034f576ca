//go:build onnx

// Package onnx scores (query, title) pairs with a fine-tuned DistilBERT
// cross-encoder exported to ONNX. The model consumes a BERT sentence-pair
// encoding and emits a single matching probability.
package onnx

import (
	"context"
	"fmt"
	"log"
	"math"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/cartlane/copilot-go-sdk/wordpiece"
)

// Config configures the ONNX cross-encoder scorer.
type Config struct {
	// ModelPath is the path to the exported cross-encoder ONNX file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string

	// LibraryPath optionally points at libonnxruntime.so.
	LibraryPath string

	// MaxSequence is the input sequence length (default: 256 to fit query
	// plus title).
	MaxSequence int
}

// Scorer runs the cross-encoder for each (query, title) pair.
type Scorer struct {
	session     *ort.DynamicAdvancedSession
	tokenizer   *wordpiece.Tokenizer
	maxSequence int
}

// New creates an ONNX scorer.
func New(cfg Config) (*Scorer, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.MaxSequence == 0 {
		cfg.MaxSequence = 256
	}

	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
	}

	tokenizer, err := wordpiece.Load(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	// DistilBERT takes no token_type_ids; the pair is separated by [SEP]
	// alone.
	inputNames := []string{"input_ids", "attention_mask"}
	outputNames := []string{"logits"}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("create ONNX session: %w", err)
	}

	log.Printf("[ONNX] Cross-encoder ready: model=%s", cfg.ModelPath)

	return &Scorer{
		session:     session,
		tokenizer:   tokenizer,
		maxSequence: cfg.MaxSequence,
	}, nil
}

// Score runs one (query, title) pair through the cross-encoder and returns
// the matching probability in [0, 1].
func (s *Scorer) Score(ctx context.Context, query, title string) (float32, error) {
	enc := s.tokenizer.Encode(query, title, s.maxSequence)

	shape := ort.NewShape(1, int64(s.maxSequence))
	inputIDs, err := ort.NewTensor(shape, enc.InputIDs)
	if err != nil {
		return 0, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer inputIDs.Destroy()

	attentionMask, err := ort.NewTensor(shape, enc.AttentionMask)
	if err != nil {
		return 0, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer attentionMask.Destroy()

	outputs := []ort.Value{nil}
	err = s.session.Run([]ort.Value{inputIDs, attentionMask}, outputs)
	if err != nil {
		return 0, fmt.Errorf("ONNX inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	if len(outputs) == 0 || outputs[0] == nil {
		return 0, fmt.Errorf("no output tensors returned")
	}
	outputTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return 0, fmt.Errorf("unexpected output tensor type")
	}
	data := outputTensor.GetData()
	if len(data) == 0 {
		return 0, fmt.Errorf("empty output tensor")
	}

	// Exports with the sigmoid baked in emit a probability; raw-logit
	// exports need it applied here.
	score := data[0]
	if score < 0 || score > 1 {
		score = float32(1 / (1 + math.Exp(-float64(score))))
	}
	return score, nil
}

// Close releases ONNX resources.
func (s *Scorer) Close() error {
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}

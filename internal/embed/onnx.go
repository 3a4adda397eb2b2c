package embed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// ONNXConfig describes a sentence-transformer model exported to ONNX.
type ONNXConfig struct {
	// RuntimeLibrary is the path to the onnxruntime shared library.
	// Empty uses the platform default search path.
	RuntimeLibrary string

	// ModelPath is the .onnx file (e.g. all-MiniLM-L6-v2/model.onnx).
	ModelPath string

	// TokenizerPath is the HuggingFace tokenizer.json for the model.
	TokenizerPath string

	// MaxSeqLen truncates token sequences (default 128).
	MaxSeqLen int

	// Dimensions is the hidden size of the model output (default 384).
	Dimensions int

	// ModelID overrides the identifier stored with embeddings.
	ModelID string
}

var (
	ortMu    sync.Mutex
	ortUsers int
)

func acquireRuntime(lib string) error {
	ortMu.Lock()
	defer ortMu.Unlock()

	if ortUsers == 0 && !ort.IsInitialized() {
		if lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			return fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}
	ortUsers++
	return nil
}

func releaseRuntime() {
	ortMu.Lock()
	defer ortMu.Unlock()

	ortUsers--
	if ortUsers == 0 && ort.IsInitialized() {
		_ = ort.DestroyEnvironment()
	}
}

// ONNXEncoder produces mean-pooled, L2-normalized sentence embeddings.
// Sessions are safe for concurrent Run calls; tokenization is serialized.
type ONNXEncoder struct {
	cfg     ONNXConfig
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	tkMu    sync.Mutex
	closed  bool
	mu      sync.RWMutex
}

// NewONNXEncoder loads the tokenizer and model.
func NewONNXEncoder(cfg ONNXConfig) (*ONNXEncoder, error) {
	if cfg.ModelPath == "" || cfg.TokenizerPath == "" {
		return nil, errors.New("onnx encoder requires modelPath and tokenizerPath")
	}
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 128
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.ModelID == "" {
		cfg.ModelID = fmt.Sprintf("onnx-%s-%d", filepath.Base(filepath.Dir(cfg.ModelPath)), cfg.Dimensions)
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	if err := acquireRuntime(cfg.RuntimeLibrary); err != nil {
		return nil, err
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"}, nil)
	if err != nil {
		releaseRuntime()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXEncoder{cfg: cfg, session: session, tk: tk}, nil
}

// Embed encodes text.
func (o *ONNXEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return nil, errors.New("onnx encoder is closed")
	}

	ids, mask, types, err := o.tokenize(NormalizeText(text))
	if err != nil {
		return nil, err
	}
	seqLen := int64(len(ids))

	shape := ort.NewShape(1, seqLen)
	idsT, err := ort.NewTensor(shape, ids)
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idsT.Destroy()
	maskT, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskT.Destroy()
	typesT, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typesT.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, seqLen, int64(o.cfg.Dimensions)))
	if err != nil {
		return nil, fmt.Errorf("output tensor: %w", err)
	}
	defer out.Destroy()

	if err := o.session.Run([]ort.Value{idsT, maskT, typesT}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	return meanPool(out.GetData(), mask, o.cfg.Dimensions), nil
}

func (o *ONNXEncoder) tokenize(text string) (ids, mask, types []int64, err error) {
	o.tkMu.Lock()
	enc, err := o.tk.EncodeSingle(text, true)
	o.tkMu.Unlock()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("tokenize: %w", err)
	}

	if len(enc.Ids) == 0 {
		return nil, nil, nil, errors.New("tokenizer produced no tokens")
	}
	ids, mask, types = truncateTokens(enc.Ids, enc.AttentionMask, enc.TypeIds, o.cfg.MaxSeqLen)
	return ids, mask, types, nil
}

// truncateTokens converts an encoding to model inputs of at most maxLen
// tokens. A cut sequence keeps its final token, the closing [SEP].
func truncateTokens(encIDs, encMask, encTypes []int, maxLen int) (ids, mask, types []int64) {
	n := len(encIDs)
	cut := maxLen > 0 && n > maxLen
	if cut {
		n = maxLen
	}

	ids = make([]int64, n)
	mask = make([]int64, n)
	types = make([]int64, n)
	for i := 0; i < n; i++ {
		src := i
		if cut && i == n-1 {
			src = len(encIDs) - 1
		}
		ids[i] = int64(encIDs[src])
		mask[i] = 1
		if src < len(encMask) {
			mask[i] = int64(encMask[src])
		}
		if src < len(encTypes) {
			types[i] = int64(encTypes[src])
		}
	}
	return ids, mask, types
}

// meanPool averages token vectors weighted by the attention mask and
// L2-normalizes the result.
func meanPool(hidden []float32, mask []int64, dim int) []float32 {
	sum := make([]float64, dim)
	var count float64
	for t, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[t*dim : (t+1)*dim]
		for j, v := range row {
			sum[j] += float64(v)
		}
		count++
	}

	out := make([]float32, dim)
	if count == 0 {
		return out
	}

	var norm float64
	for j := range sum {
		sum[j] /= count
		norm += sum[j] * sum[j]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		norm = 1
	}
	for j := range sum {
		out[j] = float32(sum[j] / norm)
	}
	return out
}

// ModelID identifies the model.
func (o *ONNXEncoder) ModelID() string { return o.cfg.ModelID }

// Close destroys the session and releases the runtime.
func (o *ONNXEncoder) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true

	var err error
	if o.session != nil {
		err = o.session.Destroy()
		o.session = nil
	}
	releaseRuntime()
	return err
}

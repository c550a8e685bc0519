package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const (
	numStarClasses      = 5
	defaultSeqLen       = 256
	defaultBatchSize    = 16
	defaultPoolSize     = 2
	defaultIntraThreads = 2
	defaultInterThreads = 1
)

// BertConfig locates the exported sentiment model and bounds its
// execution resources.
type BertConfig struct {
	// ModelDir holds model.onnx (or model.int8.onnx) and the
	// tokenizer vocab.
	ModelDir string
	// ModelName is the upstream identifier reported in results.
	ModelName string
	// SeqLen is the fixed token window per review.
	SeqLen int
	// BatchSize is how many reviews one inference call scores.
	BatchSize int
	// PoolSize bounds concurrent inference sessions across requests.
	PoolSize int
	// IntraThreads/InterThreads bound onnxruntime CPU usage.
	IntraThreads int
	InterThreads int
}

// BertOracle runs a 5-class star classifier exported to ONNX. Sessions
// are pooled; each holds tensors sized for one batch, so a request's
// reviews go through in a small number of batch calls.
type BertOracle struct {
	model     string
	tokenizer *WordPieceTokenizer
	seqLen    int
	batchSize int
	sessions  chan *bertSession
}

type bertSession struct {
	session       *ort.AdvancedSession
	inputIDs      *ort.Tensor[int64]
	attentionMask *ort.Tensor[int64]
	output        *ort.Tensor[float32]
}

// LoadBert initializes the ONNX runtime, tokenizer, and session pool.
// Any failure leaves the process eligible for the mock fallback; no
// partial state is retained.
func LoadBert(cfg BertConfig) (*BertOracle, error) {
	if strings.TrimSpace(cfg.ModelDir) == "" {
		return nil, errors.New("model dir is empty")
	}
	if cfg.SeqLen <= 0 {
		cfg.SeqLen = defaultSeqLen
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.IntraThreads <= 0 {
		cfg.IntraThreads = defaultIntraThreads
	}
	if cfg.InterThreads <= 0 {
		cfg.InterThreads = defaultInterThreads
	}

	modelPath := resolveModelPath(cfg.ModelDir)
	if modelPath == "" {
		return nil, fmt.Errorf("no model.onnx under %s", cfg.ModelDir)
	}

	libPath := resolveSharedLibraryPath(cfg.ModelDir)
	if libPath == "" {
		return nil, errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)
	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	tokenizer, err := LoadWordPieceTokenizer(resolveVocabPath(cfg.ModelDir))
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	sessions := make(chan *bertSession, cfg.PoolSize)
	for i := 0; i < cfg.PoolSize; i++ {
		bs, err := newBertSession(modelPath, cfg)
		if err != nil {
			return nil, fmt.Errorf("create onnx session %d/%d: %w", i+1, cfg.PoolSize, err)
		}
		sessions <- bs
	}

	return &BertOracle{
		model:     cfg.ModelName,
		tokenizer: tokenizer,
		seqLen:    cfg.SeqLen,
		batchSize: cfg.BatchSize,
		sessions:  sessions,
	}, nil
}

func newBertSession(modelPath string, cfg BertConfig) (*bertSession, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	if err := opts.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableAll); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("set graph optimization: %w", err)
	}
	if err := opts.SetIntraOpNumThreads(cfg.IntraThreads); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("set intra threads: %w", err)
	}
	if err := opts.SetInterOpNumThreads(cfg.InterThreads); err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("set inter threads: %w", err)
	}

	inputShape := ort.NewShape(int64(cfg.BatchSize), int64(cfg.SeqLen))
	inputIDs, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("allocate input_ids tensor: %w", err)
	}
	attnMask, err := ort.NewEmptyTensor[int64](inputShape)
	if err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("allocate attention_mask tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(int64(cfg.BatchSize), numStarClasses))
	if err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("allocate output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask"},
		[]string{"logits"},
		[]ort.Value{inputIDs, attnMask},
		[]ort.Value{output},
		opts,
	)
	if err != nil {
		opts.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}
	opts.Destroy()

	return &bertSession{
		session:       session,
		inputIDs:      inputIDs,
		attentionMask: attnMask,
		output:        output,
	}, nil
}

// Close drains the session pool and releases ONNX resources. The
// oracle must not be used afterwards.
func (b *BertOracle) Close() error {
	if b == nil || b.sessions == nil {
		return nil
	}
	var firstErr error
	for i := 0; i < cap(b.sessions); i++ {
		bs := <-b.sessions
		if err := bs.session.Destroy(); err != nil && firstErr == nil {
			firstErr = err
		}
		bs.inputIDs.Destroy()
		bs.attentionMask.Destroy()
		bs.output.Destroy()
	}
	close(b.sessions)
	b.sessions = nil
	return firstErr
}

// Mode implements Oracle.
func (b *BertOracle) Mode() Mode { return ModeBert }

// Model implements Oracle.
func (b *BertOracle) Model() string { return b.model }

// Score tokenizes the texts and runs them through the model in batch
// chunks, returning one verdict per text in input order.
func (b *BertOracle) Score(ctx context.Context, texts []string) ([]Verdict, error) {
	if b == nil || b.sessions == nil {
		return nil, errors.New("bert oracle not initialized")
	}

	out := make([]Verdict, 0, len(texts))
	for start := 0; start < len(texts); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + b.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		verdicts, err := b.scoreBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, verdicts...)
	}
	return out, nil
}

func (b *BertOracle) scoreBatch(ctx context.Context, texts []string) ([]Verdict, error) {
	var bs *bertSession
	select {
	case bs = <-b.sessions:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { b.sessions <- bs }()

	ids := bs.inputIDs.GetData()
	attn := bs.attentionMask.GetData()
	for i := range ids {
		ids[i] = 0
		attn[i] = 0
	}
	for row, text := range texts {
		rowIDs, rowAttn := b.tokenizer.Encode(text, b.seqLen)
		copy(ids[row*b.seqLen:], rowIDs)
		copy(attn[row*b.seqLen:], rowAttn)
	}

	if err := bs.session.Run(); err != nil {
		return nil, fmt.Errorf("onnx run: %w", err)
	}

	logits := bs.output.GetData()
	verdicts := make([]Verdict, len(texts))
	for row := range texts {
		verdicts[row] = classify(logits[row*numStarClasses : (row+1)*numStarClasses])
	}
	return verdicts, nil
}

// classify converts one row of logits into a star verdict via softmax.
func classify(logits []float32) Verdict {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	var sum float64
	probs := make([]float64, len(logits))
	for i, l := range logits {
		probs[i] = math.Exp(float64(l - maxLogit))
		sum += probs[i]
	}

	best, bestProb := 0, 0.0
	for i, p := range probs {
		p /= sum
		if p > bestProb {
			best, bestProb = i, p
		}
	}

	return Verdict{Stars: best + 1, Confidence: bestProb}
}

func resolveModelPath(dir string) string {
	for _, name := range []string{"model.int8.onnx", "model.onnx"} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func resolveVocabPath(dir string) string {
	candidates := []string{
		filepath.Join(dir, "tokenizer", "vocab.txt"),
		filepath.Join(dir, "vocab.txt"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return candidates[0]
}

// resolveSharedLibraryPath locates the onnxruntime shared library.
// ONNXRUNTIME_SHARED_LIBRARY_PATH wins; otherwise common names and
// locations are probed.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.dylib",
		"onnxruntime.dylib",
		"libonnxruntime.so",
		"onnxruntime.so",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/opt/homebrew/lib",
		"/usr/local/lib",
		"/usr/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

package scheduler

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
)

// Policy is a small two-layer feed-forward network used as the learned
// decision function. Inference is deterministic: the highest-scoring action
// index wins. Training happens elsewhere; this type only loads, saves and
// evaluates persisted weights.
type Policy struct {
	Inputs  int         `json:"inputs"`
	Hidden  int         `json:"hidden"`
	Outputs int         `json:"outputs"`
	W1      [][]float64 `json:"w1"`
	B1      []float64   `json:"b1"`
	W2      [][]float64 `json:"w2"`
	B2      []float64   `json:"b2"`
}

// NewRandomPolicy initialises a policy with small random weights.
func NewRandomPolicy(inputs, hidden, outputs int, rng *rand.Rand) *Policy {
	p := &Policy{
		Inputs:  inputs,
		Hidden:  hidden,
		Outputs: outputs,
		W1:      make([][]float64, hidden),
		B1:      make([]float64, hidden),
		W2:      make([][]float64, outputs),
		B2:      make([]float64, outputs),
	}
	scale := 1.0 / math.Sqrt(float64(inputs))
	for i := range p.W1 {
		p.W1[i] = make([]float64, inputs)
		for j := range p.W1[i] {
			p.W1[i][j] = rng.NormFloat64() * scale
		}
	}
	hiddenScale := 1.0 / math.Sqrt(float64(hidden))
	for i := range p.W2 {
		p.W2[i] = make([]float64, hidden)
		for j := range p.W2[i] {
			p.W2[i][j] = rng.NormFloat64() * hiddenScale
		}
	}
	return p
}

// Predict returns the argmax action index for the observation.
func (p *Policy) Predict(obs []float64) int {
	hidden := make([]float64, p.Hidden)
	for i := 0; i < p.Hidden; i++ {
		sum := p.B1[i]
		row := p.W1[i]
		for j := 0; j < p.Inputs && j < len(obs); j++ {
			sum += row[j] * obs[j]
		}
		hidden[i] = math.Tanh(sum)
	}

	best := 0
	bestScore := math.Inf(-1)
	for i := 0; i < p.Outputs; i++ {
		sum := p.B2[i]
		row := p.W2[i]
		for j := 0; j < p.Hidden; j++ {
			sum += row[j] * hidden[j]
		}
		if sum > bestScore {
			bestScore = sum
			best = i
		}
	}
	return best
}

// Clone deep-copies the policy.
func (p *Policy) Clone() *Policy {
	out := &Policy{
		Inputs:  p.Inputs,
		Hidden:  p.Hidden,
		Outputs: p.Outputs,
		W1:      make([][]float64, len(p.W1)),
		B1:      append([]float64(nil), p.B1...),
		W2:      make([][]float64, len(p.W2)),
		B2:      append([]float64(nil), p.B2...),
	}
	for i := range p.W1 {
		out.W1[i] = append([]float64(nil), p.W1[i]...)
	}
	for i := range p.W2 {
		out.W2[i] = append([]float64(nil), p.W2[i]...)
	}
	return out
}

func (p *Policy) validate() error {
	if p.Inputs <= 0 || p.Hidden <= 0 || p.Outputs <= 0 {
		return fmt.Errorf("policy dimensions must be positive (inputs=%d hidden=%d outputs=%d)", p.Inputs, p.Hidden, p.Outputs)
	}
	if len(p.W1) != p.Hidden || len(p.B1) != p.Hidden {
		return fmt.Errorf("hidden layer shape mismatch")
	}
	for i, row := range p.W1 {
		if len(row) != p.Inputs {
			return fmt.Errorf("hidden weight row %d has %d columns, want %d", i, len(row), p.Inputs)
		}
	}
	if len(p.W2) != p.Outputs || len(p.B2) != p.Outputs {
		return fmt.Errorf("output layer shape mismatch")
	}
	for i, row := range p.W2 {
		if len(row) != p.Hidden {
			return fmt.Errorf("output weight row %d has %d columns, want %d", i, len(row), p.Hidden)
		}
	}
	return nil
}

// LoadPolicy reads and validates a persisted policy artifact.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy artifact: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode policy artifact: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("invalid policy artifact: %w", err)
	}
	return &p, nil
}

// Save writes the policy artifact, creating parent directories as needed.
func (p *Policy) Save(path string) error {
	if err := p.validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create policy directory: %w", err)
		}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode policy artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write policy artifact: %w", err)
	}
	return nil
}

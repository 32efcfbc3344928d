package policy

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	ts "github.com/armsim/reacharm/timestep"
	"github.com/armsim/reacharm/utils/floatutils"
)

// Linear is a deterministic linear policy: actions are an affine map
// of the observation, clipped to the environment's action bounds.
// Linear is gob-serializable, so trained weights can be checkpointed
// to disk during training and reloaded by the evaluation harness.
type Linear struct {
	weights *mat.Dense // actions × features
	bias    *mat.VecDense
	low     *mat.VecDense
	high    *mat.VecDense
}

// linearData is the gob wire form of a Linear policy
type linearData struct {
	Actions  int
	Features int
	Weights  []float64
	Bias     []float64
	Low      []float64
	High     []float64
}

// NewLinear returns a new Linear policy with the given weights, bias,
// and per-action bounds
func NewLinear(weights *mat.Dense, bias, low, high *mat.VecDense) (*Linear,
	error) {
	actions, _ := weights.Dims()
	if bias.Len() != actions || low.Len() != actions ||
		high.Len() != actions {
		return nil, fmt.Errorf("newLinear: bias and bounds must have one "+
			"entry per action \n\thave(%v, %v, %v) \n\twant(%v)",
			bias.Len(), low.Len(), high.Len(), actions)
	}

	return &Linear{weights, bias, low, high}, nil
}

// SelectAction computes the clipped affine action for a timestep's
// observation
func (l *Linear) SelectAction(t ts.TimeStep) *mat.VecDense {
	actions, features := l.weights.Dims()
	if t.Observation.Len() != features {
		panic(fmt.Sprintf("selectAction: observation length %v does not "+
			"match policy features %v", t.Observation.Len(), features))
	}

	action := mat.NewVecDense(actions, nil)
	action.MulVec(l.weights, t.Observation)
	action.AddVec(action, l.bias)

	for i := 0; i < action.Len(); i++ {
		action.SetVec(i, floatutils.Clip(action.AtVec(i), l.low.AtVec(i),
			l.high.AtVec(i)))
	}
	return action
}

// GobEncode implements gob.GobEncoder
func (l *Linear) GobEncode() ([]byte, error) {
	actions, features := l.weights.Dims()

	data := linearData{
		Actions:  actions,
		Features: features,
		Weights:  l.weights.RawMatrix().Data,
		Bias:     l.bias.RawVector().Data,
		Low:      l.low.RawVector().Data,
		High:     l.high.RawVector().Data,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("gobEncode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder
func (l *Linear) GobDecode(b []byte) error {
	var data linearData
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&data); err != nil {
		return fmt.Errorf("gobDecode: %v", err)
	}

	l.weights = mat.NewDense(data.Actions, data.Features, data.Weights)
	l.bias = mat.NewVecDense(data.Actions, data.Bias)
	l.low = mat.NewVecDense(data.Actions, data.Low)
	l.high = mat.NewVecDense(data.Actions, data.High)
	return nil
}

// Save writes the policy weights to a checkpoint file
func (l *Linear) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(l); err != nil {
		return fmt.Errorf("save: could not encode policy: %v", err)
	}
	return nil
}

// LoadLinear reads a Linear policy back from a checkpoint file
func LoadLinear(filename string) (*Linear, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadLinear: could not open checkpoint: %v",
			err)
	}
	defer file.Close()

	var l Linear
	if err := gob.NewDecoder(file).Decode(&l); err != nil {
		return nil, fmt.Errorf("loadLinear: could not decode policy: %v",
			err)
	}
	return &l, nil
}

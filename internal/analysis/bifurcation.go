package analysis

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/LemoMew/FractalPendulum/internal/dynamo"
	"github.com/LemoMew/FractalPendulum/internal/physics"
	"github.com/LemoMew/FractalPendulum/internal/sim"
)

// BifurcationPoint holds the distinct section values found for one
// parameter value.
type BifurcationPoint struct {
	Param    float64
	Values   []float64
	Diverged bool
}

// BifurcationDiagram sweeps one pendulum parameter (m1..m3, l1..l3, g) and,
// after a transient, records ω1 each time θ1 rises through zero. Values are
// deduplicated at a resolution of 1e-3. A parameter value whose run diverges
// is marked and the sweep continues.
func BifurcationDiagram(
	ctx context.Context,
	c physics.Constants,
	paramName string,
	paramMin, paramMax float64,
	paramSteps int,
	x0 dynamo.State,
	cfg sim.StepConfig,
	transient, record int,
) ([]BifurcationPoint, error) {
	if paramSteps <= 1 {
		paramSteps = 2
	}
	model := physics.NewTriplePendulum(c)
	if _, ok := model.GetParams()[paramName]; !ok {
		return nil, errors.New("unknown param: " + paramName)
	}

	paramStep := (paramMax - paramMin) / float64(paramSteps-1)
	results := make([]BifurcationPoint, 0, paramSteps)

	for i := 0; i < paramSteps; i++ {
		param := paramMin + float64(i)*paramStep
		if err := model.SetParam(paramName, param); err != nil {
			return nil, err
		}

		s, err := sim.New(model.Constants, x0, sim.WithStepConfig(cfg))
		if err != nil {
			return nil, err
		}

		point := BifurcationPoint{Param: param}
		if _, err := s.Run(ctx, transient); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			point.Diverged = true
			results = append(results, point)
			continue
		}

		run, err := s.Run(ctx, record)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return results, ctxErr
		}
		point.Diverged = err != nil

		seen := make(map[int64]bool)
		for _, p := range PoincareSectionFromResult(run, 0, 0, 1, 1).Points {
			key := int64(math.Round(p.X * 1000))
			if !seen[key] {
				seen[key] = true
				point.Values = append(point.Values, p.X)
			}
		}
		results = append(results, point)
	}

	return results, nil
}

// BifurcationToASCII plots parameter along x and section values along y.
func BifurcationToASCII(data []BifurcationPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var minVal, maxVal float64
	foundFirst := false
	for _, p := range data {
		for _, v := range p.Values {
			if !foundFirst {
				minVal, maxVal = v, v
				foundFirst = true
				continue
			}
			minVal, maxVal = math.Min(minVal, v), math.Max(maxVal, v)
		}
	}
	if !foundFirst {
		return ""
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		for _, v := range p.Values {
			row := height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
			if row >= 0 && row < height {
				canvas[row][col] = '•'
			}
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}

package data

import (
	"encoding/json"
	"fmt"
	"os"

	"stochastic-dispatch/internal/model"
	"stochastic-dispatch/internal/scenario"
)

// Wind is available wind production per scenario, node and step (MW).
type Wind struct {
	Scenarios []string
	Steps     []string
	// Production is keyed scenario -> node -> one value per step.
	Production map[string]map[string][]float64
}

// Demand is the load signal per node and step (MW).
type Demand struct {
	Steps  []string
	Nodes  []string
	Series map[string][]float64
}

// LoadWindCapacity reads installed wind capacity per node: the first column
// is the node id, the second the capacity in MW.
func LoadWindCapacity(path string) (map[string]float64, error) {
	t, err := readTable(path, "wind capacity")
	if err != nil {
		return nil, err
	}
	if len(t.header) < 2 {
		return nil, model.NewDataError(t.name, "need node and capacity columns")
	}
	out := make(map[string]float64, len(t.rows))
	for i := range t.rows {
		v, err := t.float(i, 1)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, model.NewDataError(t.name, "node %q: negative capacity %v", t.text(i, 0), v)
		}
		out[t.text(i, 0)] = v
	}
	return out, nil
}

// LoadWindScenarios reads relative wind production in long format and scales
// it by installed capacity. Each row is one (step, node): the first column is
// the step label, the "minor" column names the node, and every other column is
// a scenario holding a per-unit value.
func LoadWindScenarios(path, capacityPath string) (*Wind, error) {
	capacity, err := LoadWindCapacity(capacityPath)
	if err != nil {
		return nil, err
	}
	t, err := readTable(path, "wind scenarios")
	if err != nil {
		return nil, err
	}
	minor, err := t.column("minor")
	if err != nil {
		return nil, err
	}
	if minor == 0 {
		return nil, model.NewDataError(t.name, "first column must be the step label")
	}

	w := &Wind{Production: map[string]map[string][]float64{}}
	var scenCols []int
	for i := 1; i < len(t.header); i++ {
		if i == minor {
			continue
		}
		scenCols = append(scenCols, i)
		w.Scenarios = append(w.Scenarios, t.header[i])
		w.Production[t.header[i]] = map[string][]float64{}
	}
	if len(scenCols) == 0 {
		return nil, model.NewDataError(t.name, "no scenario columns")
	}

	// values[node][step][scenario column]
	values := map[string]map[string][]float64{}
	var nodes []string
	stepSeen := map[string]bool{}
	for i := range t.rows {
		step, node := t.text(i, 0), t.text(i, minor)
		if !stepSeen[step] {
			stepSeen[step] = true
			w.Steps = append(w.Steps, step)
		}
		c, ok := capacity[node]
		if !ok {
			return nil, model.NewDataError(t.name, "no installed wind capacity for node %q", node)
		}
		byStep, ok := values[node]
		if !ok {
			byStep = map[string][]float64{}
			values[node] = byStep
			nodes = append(nodes, node)
		}
		if _, dup := byStep[step]; dup {
			return nil, model.NewDataError(t.name, "node %q step %q listed twice", node, step)
		}
		row := make([]float64, len(scenCols))
		for j, col := range scenCols {
			v, err := t.float(i, col)
			if err != nil {
				return nil, err
			}
			row[j] = c * v
		}
		byStep[step] = row
	}

	for _, node := range nodes {
		for j, scen := range w.Scenarios {
			series := make([]float64, len(w.Steps))
			for k, step := range w.Steps {
				row, ok := values[node][step]
				if !ok {
					return nil, model.NewDataError(t.name, "node %q has no value for step %q", node, step)
				}
				series[k] = row[j]
			}
			w.Production[scen][node] = series
		}
	}
	return w, nil
}

// LoadDemand reads the load signal: the first column is the step label and
// every other column is a node.
func LoadDemand(path string) (*Demand, error) {
	t, err := readTable(path, "load")
	if err != nil {
		return nil, err
	}
	if len(t.header) < 2 {
		return nil, model.NewDataError(t.name, "need a step column and at least one node column")
	}
	d := &Demand{Nodes: append([]string(nil), t.header[1:]...), Series: map[string][]float64{}}
	for _, n := range d.Nodes {
		if _, dup := d.Series[n]; dup {
			return nil, model.NewDataError(t.name, "node %q listed twice", n)
		}
		d.Series[n] = make([]float64, 0, len(t.rows))
	}
	for i := range t.rows {
		d.Steps = append(d.Steps, t.text(i, 0))
		for j, n := range d.Nodes {
			v, err := t.float(i, j+1)
			if err != nil {
				return nil, err
			}
			d.Series[n] = append(d.Series[n], v)
		}
	}
	return d, nil
}

// BuildForecast joins wind and demand into one forecast payload. Both must
// cover the same steps in the same order. Scenarios are equally likely.
func BuildForecast(w *Wind, d *Demand) (scenario.Data, error) {
	if w == nil || d == nil {
		return scenario.Data{}, model.NewDataError("forecast", "wind and demand are both required")
	}
	if len(w.Steps) != len(d.Steps) {
		return scenario.Data{}, model.NewDataError("forecast", "wind covers %d steps, load covers %d", len(w.Steps), len(d.Steps))
	}
	for i := range w.Steps {
		if w.Steps[i] != d.Steps[i] {
			return scenario.Data{}, model.NewDataError("forecast", "step %d is %q in wind and %q in load", i, w.Steps[i], d.Steps[i])
		}
	}
	return scenario.Data{
		Scenarios: append([]string(nil), w.Scenarios...),
		Steps:     append([]string(nil), d.Steps...),
		Renewable: w.Production,
		Demand:    d.Series,
	}, nil
}

// LoadForecast reads the wind scenario, wind capacity and load files and
// builds the forecast payload.
func LoadForecast(windPath, capacityPath, loadPath string) (scenario.Data, error) {
	w, err := LoadWindScenarios(windPath, capacityPath)
	if err != nil {
		return scenario.Data{}, err
	}
	d, err := LoadDemand(loadPath)
	if err != nil {
		return scenario.Data{}, err
	}
	return BuildForecast(w, d)
}

// LoadForecastJSON reads a forecast payload as accepted by a refresh.
func LoadForecastJSON(path string) (scenario.Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenario.Data{}, fmt.Errorf("failed to read forecast file: %w", err)
	}
	var d scenario.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return scenario.Data{}, model.NewDataError("forecast", "invalid json: %v", err)
	}
	return d, nil
}

// SaveForecastJSON writes d in the format LoadForecastJSON reads.
func SaveForecastJSON(d scenario.Data, path string) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal forecast: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write forecast file: %w", err)
	}
	return nil
}

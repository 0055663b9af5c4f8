package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/carewatch/core/model"
)

// StateDef is a resource state written in a scenario file.
type StateDef struct {
	Oxygen float64 `yaml:"oxygen"`
	Beds   int     `yaml:"beds"`
	Staff  int     `yaml:"staff"`
}

func (s StateDef) ToModel() model.State {
	return model.State{Oxygen: s.Oxygen, Beds: s.Beds, Staff: s.Staff}
}

type Expected struct {
	State  StateDef `yaml:"state"`
	Shocks int      `yaml:"shocks"`
	Draws  int      `yaml:"draws"`
	// Beds lists the bed history after the run, oldest first. Optional.
	Beds []float64 `yaml:"beds,omitempty"`
}

// Scenario replays a fixed sequence of random draws through the engine.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Initial     *StateDef `yaml:"initial,omitempty"`
	Draws       []float64 `yaml:"draws"`
	Ticks       int       `yaml:"ticks"`
	Expected    Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

package component

// Position is a point on the demo plane.
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (Position) Name() string { return "position" }

// Velocity is applied to Position once per tick by MoveSystem.
type Velocity struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (Velocity) Name() string { return "velocity" }

package component

// Lifetime counts down one per tick. At zero the entity is tagged Expired.
type Lifetime struct {
	Frames int `yaml:"frames"`
}

func (Lifetime) Name() string { return "lifetime" }

// Expired marks an entity for destruction in the cleanup phase.
type Expired struct {
	Frame uint64 // tick on which the lifetime ran out
}

func (Expired) Name() string { return "expired" }

// Label is a free-form display name, set from the prefab name when spawned.
type Label struct {
	Text string `yaml:"text"`
}

func (Label) Name() string { return "label" }

package testutil

// FixedIDGenerator returns the same run id every time.
//
// If id is empty, Generate returns "test-run-default".
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a fixed run id generator.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}

package market

import "fmt"

// Kind is the kind of a decision variable.
type Kind int

const (
	Generation Kind = iota
	RenewableUse
	LoadShed
	LineFlow
	NodeAngle
	numKinds
)

func (k Kind) String() string {
	switch k {
	case Generation:
		return "generation"
	case RenewableUse:
		return "renewable_use"
	case LoadShed:
		return "load_shed"
	case LineFlow:
		return "line_flow"
	case NodeAngle:
		return "node_angle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Kinds lists every variable kind.
func Kinds() []Kind {
	return []Kind{Generation, RenewableUse, LoadShed, LineFlow, NodeAngle}
}

// ConstraintKind is the kind of a constraint.
type ConstraintKind int

const (
	PowerBalance ConstraintKind = iota
	FlowAngle
	numConstraintKinds
)

func (k ConstraintKind) String() string {
	switch k {
	case PowerBalance:
		return "power_balance"
	case FlowAngle:
		return "flow_angle"
	default:
		return fmt.Sprintf("ConstraintKind(%d)", int(k))
	}
}

func ConstraintKinds() []ConstraintKind {
	return []ConstraintKind{PowerBalance, FlowAngle}
}

// Key addresses one (scenario, entity, step) entry by integer position.
// Entity is a generator, node or line position depending on the kind.
type Key struct {
	Scenario int
	Entity   int
	Step     int
}

// grid is the dense layout of one scenario x entity x step product.
type grid struct {
	scenarios int
	entities  int
	steps     int
}

func (g grid) size() int { return g.scenarios * g.entities * g.steps }

func (g grid) contains(k Key) bool {
	return k.Scenario >= 0 && k.Scenario < g.scenarios &&
		k.Entity >= 0 && k.Entity < g.entities &&
		k.Step >= 0 && k.Step < g.steps
}

func (g grid) index(k Key) int {
	return (k.Scenario*g.entities+k.Entity)*g.steps + k.Step
}

package scaffold

import (
	"fmt"
	"path/filepath"
)

// Role identifies a unit within a template; it is also the unit name suffix.
type Role string

const (
	RoleLambda           Role = "Lambda"
	RoleLambdaTests      Role = "Lambda.Tests"
	RoleApplication      Role = "Application"
	RoleDomain           Role = "Domain"
	RoleInfrastructure   Role = "Infrastructure"
	RoleApplicationTests Role = "Application.Tests"
	RoleDomainTests      Role = "Domain.Tests"
)

// Unit is one buildable project produced by a scaffold run.
type Unit struct {
	Role        Role
	Name        string // e.g. "Billing.Domain"
	Dir         string // absolute project directory
	ProjectFile string // entry registered in the solution
	Test        bool
}

// Edge is a "From depends on To" project reference.
type Edge struct {
	From Role
	To   Role
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// layeredEdges is the fixed reference graph of the layered template, in an
// order where both ends of every edge exist before it is wired.
var layeredEdges = []Edge{
	{From: RoleInfrastructure, To: RoleDomain},
	{From: RoleDomainTests, To: RoleDomain},
	{From: RoleApplication, To: RoleDomain},
	{From: RoleApplication, To: RoleInfrastructure},
	{From: RoleApplicationTests, To: RoleApplication},
}

// LayeredEdges returns a copy of the layered reference graph.
func LayeredEdges() []Edge {
	return append([]Edge(nil), layeredEdges...)
}

// newUnit builds the unit for role under the function root. Test units live
// under test/, the rest under src/.
func (o *Orchestrator) newUnit(role Role) Unit {
	name := o.spec.Name + "." + string(role)
	test := role == RoleLambdaTests || role == RoleApplicationTests || role == RoleDomainTests

	parent := "src"
	if test {
		parent = "test"
	}
	dir := filepath.Join(o.functionRoot, parent, name)

	return Unit{
		Role:        role,
		Name:        name,
		Dir:         dir,
		ProjectFile: o.tool.ProjectFile(dir, name),
		Test:        test,
	}
}

// unitsByRole indexes units for edge resolution.
func unitsByRole(units []Unit) map[Role]Unit {
	m := make(map[Role]Unit, len(units))
	for _, u := range units {
		m[u.Role] = u
	}
	return m
}

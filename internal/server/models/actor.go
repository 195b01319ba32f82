package models

// Role distinguishes the two mutually distrusting parties of a milestone.
type Role string

const (
	RoleFreelancer Role = "freelancer"
	RoleClient     Role = "client"
)

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	ID   string
	Role Role
}

// IsOwner reports whether the actor is the freelancer who owns m.
func (a Actor) IsOwner(m *Milestone) bool {
	return a.Role == RoleFreelancer && a.ID != "" && a.ID == m.FreelancerID
}

// IsClient reports whether the actor is the client of m.
func (a Actor) IsClient(m *Milestone) bool {
	return a.Role == RoleClient && a.ID != "" && a.ID == m.ClientID
}

package roster

// Player is a squad member that GPS rows can be attributed to.
type Player struct {
	ID       string
	ClubID   string
	TeamID   string
	FullName string
	Aliases  []string
}

// Names returns the full name followed by every alias.
func (p Player) Names() []string {
	out := make([]string, 0, len(p.Aliases)+1)
	out = append(out, p.FullName)
	return append(out, p.Aliases...)
}

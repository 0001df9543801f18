package agent

type Stats struct {
	TotalAgents  int      `json:"totalAgents"`
	TotalSkills  int      `json:"totalSkills"`
	Platforms    int      `json:"platforms"`
	PlatformList []string `json:"platformList"`
	AgentCount   int      `json:"agentCount"`
	ServiceCount int      `json:"serviceCount"`
}

func ComputeStats(listings []Listing) Stats {
	s := Stats{PlatformList: []string{}}
	seen := make(map[string]bool)
	for _, l := range listings {
		s.TotalAgents++
		s.TotalSkills += len(l.Skills)
		if l.Platform != "" && !seen[l.Platform] {
			seen[l.Platform] = true
			s.PlatformList = append(s.PlatformList, l.Platform)
		}
		switch l.Type {
		case TypeAgent:
			s.AgentCount++
		case TypeService:
			s.ServiceCount++
		}
	}
	s.Platforms = len(s.PlatformList)
	return s
}

// Highlights groups the directory's front-page sections.
type Highlights struct {
	Featured        []Listing `json:"featured"`
	PopularServices []Listing `json:"popular_services"`
	ActiveAgents    []Listing `json:"active_agents"`
	Recent          []Listing `json:"recent"`
}

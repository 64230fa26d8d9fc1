package output

// JSON output shapes shared by commands. Field order matters for
// readable output; keep stable identifiers first.

// TargetInfo is the JSON view of one target.
type TargetInfo struct {
	Label      string   `json:"label"`
	Kind       string   `json:"kind"`
	Package    string   `json:"package"`
	BuildFile  string   `json:"build_file,omitempty"`
	Srcs       []string `json:"srcs,omitempty"`
	Deps       []string `json:"deps,omitempty"`
	Visibility []string `json:"visibility,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	TestOnly   bool     `json:"testonly,omitempty"`
	Size       string   `json:"size,omitempty"`
	ShardCount int      `json:"shard_count,omitempty"`
}

// ListOutput is the JSON shape of the list command.
type ListOutput struct {
	Targets []TargetInfo `json:"targets"`
	Summary ListSummary  `json:"summary"`
}

// ListSummary aggregates list results.
type ListSummary struct {
	TotalTargets int            `json:"total_targets"`
	TotalKinds   int            `json:"total_kinds"`
	ByKind       map[string]int `json:"by_kind,omitempty"`
}

// GraphNode is one node of the graph command's JSON output.
type GraphNode struct {
	Label      string   `json:"label"`
	Kind       string   `json:"kind"`
	Deps       []string `json:"deps,omitempty"`
	Dependents []string `json:"dependents,omitempty"`
}

// GraphLevel is one topological level of the graph.
type GraphLevel struct {
	Level   int         `json:"level"`
	Targets []GraphNode `json:"targets"`
}

// GraphOutput is the JSON shape of the graph command.
type GraphOutput struct {
	Levels []GraphLevel `json:"levels"`
	Stats  GraphStats   `json:"stats"`
}

// GraphStats aggregates graph structure.
type GraphStats struct {
	TotalTargets int `json:"total_targets"`
	TotalEdges   int `json:"total_edges"`
	TotalLevels  int `json:"total_levels"`
}

// DiagnosticInfo is the JSON view of one lint finding.
type DiagnosticInfo struct {
	RuleID    string `json:"rule_id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	Label     string `json:"label,omitempty"`
	BuildFile string `json:"build_file,omitempty"`
}

// LintOutput is the JSON shape of the lint command.
type LintOutput struct {
	Diagnostics []DiagnosticInfo `json:"diagnostics"`
	Summary     LintSummary      `json:"summary"`
}

// LintSummary aggregates lint findings per severity.
type LintSummary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// ClosureOutput is the JSON shape of the deps and rdeps commands.
type ClosureOutput struct {
	Label      string   `json:"label"`
	Direction  string   `json:"direction"`
	Transitive bool     `json:"transitive"`
	Targets    []string `json:"targets"`
}

// PathOutput is the JSON shape of the path command.
type PathOutput struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Found bool     `json:"found"`
	Path  []string `json:"path,omitempty"`
}

// SnapshotInfoOutput is the JSON view of one indexed snapshot.
type SnapshotInfoOutput struct {
	ID           string `json:"id"`
	Root         string `json:"root"`
	CreatedAt    string `json:"created_at"`
	PackageCount int    `json:"package_count"`
	TargetCount  int    `json:"target_count"`
}

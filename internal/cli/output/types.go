package output

// DAGOutput is the JSON form of the dag command.
type DAGOutput struct {
	Levels     []DAGLevel `json:"levels"`
	TotalCells int        `json:"total_cells"`
	TotalEdges int        `json:"total_edges"`
}

// DAGLevel is one evaluation level.
type DAGLevel struct {
	Level int       `json:"level"`
	Cells []DAGNode `json:"cells"`
}

// DAGNode is a cell and its direct edges.
type DAGNode struct {
	Cell      string   `json:"cell"`
	Defined   bool     `json:"defined"`
	DependsOn []string `json:"depends_on"`
	UsedBy    []string `json:"used_by"`
}

// LineageOutput is the JSON form of the lineage command.
type LineageOutput struct {
	Root       string   `json:"root"`
	Value      string   `json:"value"`
	Depth      int      `json:"depth"`
	Upstream   []string `json:"upstream,omitempty"`
	Downstream []string `json:"downstream,omitempty"`
}

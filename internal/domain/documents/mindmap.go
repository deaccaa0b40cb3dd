package documents

type MindmapNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Level int    `json:"level"`
}

type MindmapLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

type Mindmap struct {
	Title    string         `json:"title"`
	Nodes    []MindmapNode  `json:"nodes"`
	Links    []MindmapLink  `json:"links"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FallbackMindmap is stored when generation fails so the document still has
// a renderable single-node map.
func FallbackMindmap(filename string) Mindmap {
	return Mindmap{
		Title: "Mindmap for " + filename,
		Nodes: []MindmapNode{{ID: "center", Label: filename, Type: "central", Level: 0}},
		Links: []MindmapLink{},
		Metadata: map[string]any{
			"error": "Failed to generate detailed mindmap",
		},
	}
}

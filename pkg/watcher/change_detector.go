package watcher

// ChangeAnalysis describes what has to be redone after a change
type ChangeAnalysis struct {
	NeedConfigReload  bool
	NeedDiagramReload bool
	NeedRegenerate    bool
	ChangedFiles      []string
}

// AnalyzeChanges decides what to reload for a debounced event
func AnalyzeChanges(event ChangeEvent) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	switch event.Type {
	case ChangeTypeConfig:
		// Format, project name or phase numbering may have changed.
		analysis.NeedConfigReload = true
		analysis.NeedRegenerate = true

	case ChangeTypeDiagram:
		analysis.NeedDiagramReload = true
		analysis.NeedRegenerate = true
	}

	return analysis
}

package annotator

import (
	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/curation"
)

// Load builds the history of the YAML snapshot file at snapshotsPath. The TOML
// tables at tablesPath are used as opts.Tables unless tablesPath is empty.
func Load(snapshotsPath, tablesPath string, opts Options) (*Result, error) {
	snapshots, err := commons.LoadSnapshots(snapshotsPath)
	if err != nil {
		return nil, err
	}

	if tablesPath != "" {
		tables, err := curation.Load(tablesPath)
		if err != nil {
			return nil, err
		}
		opts.Tables = tables
	}

	return Build(snapshots, opts)
}

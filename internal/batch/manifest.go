package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one job in the output manifest.
type ManifestEntry struct {
	Name       string `json:"name"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	Composite  string `json:"composite,omitempty"`
	ShadowOnly string `json:"shadow_only,omitempty"`
	MaskDebug  string `json:"mask_debug,omitempty"`
	ContactRow int    `json:"contact_row"`
	AnchorRow  int    `json:"anchor_row"`
}

// WriteManifest writes the run results to path. Output paths are stored
// relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		e := ManifestEntry{
			Name:       r.Name,
			Success:    r.Success,
			Error:      r.Error,
			ContactRow: r.ContactRow,
			AnchorRow:  r.AnchorRow,
		}
		outs := make([]string, 3)
		for k := 0; k < len(r.Outputs) && k < 3; k++ {
			outs[k] = relPath(base, r.Outputs[k])
		}
		e.Composite, e.ShadowOnly, e.MaskDebug = outs[0], outs[1], outs[2]
		entries[i] = e
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func relPath(base, p string) string {
	if rel, err := filepath.Rel(base, p); err == nil {
		return filepath.ToSlash(rel)
	}
	return p
}

// Summary counts successful and failed jobs.
func Summary(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

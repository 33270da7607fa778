package clients

import (
	"context"
)

// --- Visualization ---
type TimelineReq struct {
	Title     string               `json:"title"`
	Segments  []int                `json:"segments"`
	Series    map[string][]float64 `json:"series"`
	OutputDir string               `json:"output_dir,omitempty"`
}

type TimelineResp struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

func (h *HTTP) GenerateTimeline(ctx context.Context, url string, req TimelineReq) (*TimelineResp, error) {
	var out TimelineResp
	if err := h.postJSON(ctx, "viz timeline", url+"/generate-timeline", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

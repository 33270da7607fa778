package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// --- Hosted inference (/models/{id}) ---
type HFReq struct {
	Inputs     []string     `json:"inputs"`
	Parameters HFParameters `json:"parameters"`
	Options    HFOptions    `json:"options"`
}
type HFParameters struct {
	// TopK of zero asks for every label.
	TopK int `json:"top_k,omitempty"`
}
type HFOptions struct {
	WaitForModel bool `json:"wait_for_model"`
	UseCache     bool `json:"use_cache"`
}

// HFModel addresses one text-classification model on an inference endpoint.
type HFModel struct {
	Endpoint string
	ID       string
	Revision string
	Token    string
}

func (m HFModel) url() string {
	u := strings.TrimRight(m.Endpoint, "/") + "/models/" + m.ID
	if m.Revision != "" && m.Revision != "main" {
		u += "?revision=" + url.QueryEscape(m.Revision)
	}
	return u
}

// Classify scores a batch of inputs and returns one label list per input.
func (h *HTTP) Classify(ctx context.Context, m HFModel, inputs []string, topK int) ([][]EmoScore, error) {
	hdr := http.Header{}
	if m.Token != "" {
		hdr.Set("Authorization", "Bearer "+m.Token)
	}
	req := HFReq{
		Inputs:     inputs,
		Parameters: HFParameters{TopK: topK},
		Options:    HFOptions{WaitForModel: true, UseCache: true},
	}
	var out [][]EmoScore
	if err := h.postJSON(ctx, "inference", m.url(), hdr, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

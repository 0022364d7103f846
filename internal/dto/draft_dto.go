package dto

import "legalai-be/pkg/draft"

// CreateDraftRequest is checked by draft.Request.Validate so the form gets its own messages.
type CreateDraftRequest struct {
	Prompt   string `json:"prompt"`
	Template string `json:"template"`
	Subtype  string `json:"subtype"`
}

type TemplateOption struct {
	Template string   `json:"template"`
	Subtypes []string `json:"subtypes"`
}

type DraftResponse struct {
	draft.Snapshot
	Templates []TemplateOption `json:"templates,omitempty"`
}

type DraftStateFrame struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

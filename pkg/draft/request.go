// Package draft turns a short description into a legal document through a text-generation backend.
package draft

import (
	"errors"
	"fmt"
	"strings"
)

type TemplateKind string

const (
	Contract  TemplateKind = "Contract"
	Agreement TemplateKind = "Agreement"
	Will      TemplateKind = "Will"
	Affidavit TemplateKind = "Affidavit"
)

var subtypes = map[TemplateKind][]string{
	Contract:  {"NDA", "Employment", "Sales", "Lease", "Service", "Partnership", "Purchase"},
	Agreement: {"Partnership", "Service", "Lease"},
	Will:      {"Unprivileged", "Privileged", "Conditional", "Joint", "Mutual"},
	Affidavit: {"General", "Financial", "Identity", "Residence", "Marriage", "NameChange"},
}

// Kinds lists template kinds in menu order.
func Kinds() []TemplateKind {
	return []TemplateKind{Contract, Agreement, Will, Affidavit}
}

// Subtypes lists the subtypes offered for kind.
func Subtypes(kind TemplateKind) []string {
	return append([]string(nil), subtypes[kind]...)
}

var ErrInvalidRequest = errors.New("invalid draft request")

// ValidationError carries the message shown inline next to the form.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// Request is one generation order.
type Request struct {
	Prompt   string       `json:"prompt"`
	Template TemplateKind `json:"template"`
	Subtype  string       `json:"subtype"`
}

// Normalize trims input and canonicalizes kind and subtype spelling.
func (r Request) Normalize() Request {
	r.Prompt = strings.TrimSpace(r.Prompt)
	r.Subtype = strings.TrimSpace(r.Subtype)
	for _, k := range Kinds() {
		if strings.EqualFold(strings.TrimSpace(string(r.Template)), string(k)) {
			r.Template = k
			for _, s := range subtypes[k] {
				if strings.EqualFold(r.Subtype, s) {
					r.Subtype = s
				}
			}
		}
	}
	return r
}

// Validate runs before any network call. The request must already be normalized.
func (r Request) Validate() error {
	if r.Prompt == "" || r.Template == "" {
		return &ValidationError{Message: "Prompt and template are required."}
	}
	known, ok := subtypes[r.Template]
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("Unsupported template: %s.", r.Template)}
	}
	if r.Subtype == "" {
		return &ValidationError{Message: fmt.Sprintf("Please select a %s type.", r.Template)}
	}
	for _, s := range known {
		if s == r.Subtype {
			return nil
		}
	}
	return &ValidationError{Message: fmt.Sprintf("Unsupported %s type: %s.", r.Template, r.Subtype)}
}

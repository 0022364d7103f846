package dto

import "legalai-be/pkg/navigation"

type MenuResponse struct {
	Role  string               `json:"role"`
	Items []navigation.NavItem `json:"items"`
}

type ResolveRequest struct {
	Path string `query:"path" validate:"required"`
}

type ResolveResponse struct {
	Path     string `json:"path"`
	Decision string `json:"decision"`
	Redirect string `json:"redirect,omitempty"`
}

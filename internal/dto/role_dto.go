package dto

type RoleResponse struct {
	Role        string `json:"role"`
	LandingPath string `json:"landing_path"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

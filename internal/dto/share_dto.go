package dto

import "legalai-be/pkg/filestore"

type ShareRequest struct {
	RecipientEmail string `form:"recipient_email" validate:"required,email"`
}

type ShareResponse struct {
	Recipient string         `json:"recipient"`
	File      filestore.Info `json:"file"`
}

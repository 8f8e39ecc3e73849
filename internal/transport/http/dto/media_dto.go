package dto

type AvatarUploadResponse struct {
	AvatarURL string `json:"avatar_url"`
}

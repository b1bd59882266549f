package models

type SwitchTabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

type SetFilterRequest struct {
	Category string `json:"category"`
}

type SetBirthdayRequest struct {
	Birthday string `json:"birthday" binding:"required"`
}

package dto

// AddAllowedUserRequest grants dashboard access to a mobile number.
type AddAllowedUserRequest struct {
	Mobile string `json:"mobile" validate:"required,numeric,min=5,max=20"`
	Name   string `json:"name" validate:"omitempty,max=64"`
}

// AuthConfigResponse carries what the front end needs to start the DingTalk handshake.
type AuthConfigResponse struct {
	CorpID string `json:"corpId"`
}

package passwordreset

const (
	// GenericRequestMessage is returned for every accepted reset request, whether or not the account exists.
	GenericRequestMessage  = "If an account exists with this email, you will receive password reset instructions."
	PasswordUpdatedMessage = "Password updated successfully"
	InvalidTokenMessage    = "Invalid or expired reset token"
)

type RequestResetRequest struct {
	Email string `json:"email" validate:"required"`
}

type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type UpdatePasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyTokenResponse struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	Error string `json:"error,omitempty"`
}

func genericRequestResponse() *ResultResponse {
	return &ResultResponse{Success: true, Message: GenericRequestMessage}
}

func invalidTokenResponse() *VerifyTokenResponse {
	return &VerifyTokenResponse{Valid: false, Error: InvalidTokenMessage}
}

package models

// SignInRequest is the body of POST /signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GenerateImageRequest is the body of POST /generate-image.
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
	ID     uint   `json:"id"`
}

// GenerateImageResponse is the success response of POST /generate-image.
type GenerateImageResponse struct {
	ImageURL string `json:"imageUrl"`
	Entries  int64  `json:"entries"`
	Name     string `json:"name"`
}

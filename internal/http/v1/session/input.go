package session

// LoginInput for POST /login
type LoginInput struct {
	Body struct {
		Email    string `json:"email"          minLength:"1" maxLength:"254" doc:"Account email"                     example:"contact@dupont.fr"`
		Password string `json:"password"       minLength:"1" maxLength:"128" doc:"Account password"`
		Role     string `json:"role,omitempty" enum:"provider,client"        doc:"Expected role; inferred when empty" example:"provider"`
	}
}

// LoginOutput for POST /login
type LoginOutput struct {
	Body Session
}

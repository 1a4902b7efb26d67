package session

// Session is returned after a successful login.
type Session struct {
	Token  string `json:"token"            doc:"Bearer token issued by the accounts service"`
	UserID string `json:"userId,omitempty" doc:"Account id"                             example:"u-42"`
	Role   string `json:"role"             doc:"provider or client"                     example:"provider"`
	Next   string `json:"next"             doc:"Screen to navigate to"                  example:"provider-dashboard"`
}

package gotrue

// Settings is the public configuration of the identity service.
type Settings struct {
	External      map[string]bool `json:"external"`
	DisableSignup bool            `json:"disable_signup"`
	Autoconfirm   bool            `json:"autoconfirm"`
}

// UserAttributes lists the fields an update may change. Empty fields are left
// untouched; Data is merged into the user metadata.
type UserAttributes struct {
	Email    string         `json:"email,omitempty"`
	Password string         `json:"password,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

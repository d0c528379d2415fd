// Package auth holds the GoTrue domain model, the per-client session store, and
// offline verification of the HS256 access tokens the service issues.
package auth

import (
	"bytes"
	"encoding/json"
	"time"
)

// Credentials is the email/password pair used to sign up or sign in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is a snapshot of a GoTrue user record.
type User struct {
	ID             string         `json:"id"`
	Aud            string         `json:"aud,omitempty"`
	Role           string         `json:"role"`
	Email          string         `json:"email"`
	NewEmail       string         `json:"new_email,omitempty"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	RecoverySentAt *time.Time     `json:"recovery_sent_at,omitempty"`
	LastSignInAt   *time.Time     `json:"last_sign_in_at,omitempty"`
	AppMetadata    StringMap      `json:"app_metadata"`
	UserMetadata   map[string]any `json:"user_metadata"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Clone returns a copy that shares no maps or pointers with u.
func (u User) Clone() User {
	out := u
	out.ConfirmedAt = cloneTime(u.ConfirmedAt)
	out.RecoverySentAt = cloneTime(u.RecoverySentAt)
	out.LastSignInAt = cloneTime(u.LastSignInAt)
	out.AppMetadata = u.AppMetadata.Clone()
	if u.UserMetadata != nil {
		out.UserMetadata = cloneAny(u.UserMetadata).(map[string]any)
	}
	return out
}

// Session is the token bundle returned by sign up, sign in and refresh.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

func (s Session) Clone() Session {
	out := s
	out.User = s.User.Clone()
	return out
}

// ParsedToken is the decoded claim set of a verified access token.
type ParsedToken struct {
	Expiry       time.Time
	Subject      string
	Email        string
	Role         string
	AppMetadata  StringMap
	UserMetadata StringMap
}

// StringMap is a string to string mapping that accepts any JSON scalar as a
// value. Non-string values are converted to their string form, nested
// objects and arrays to their JSON encoding.
type StringMap map[string]string

func (m *StringMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ToStringMap(raw)
	return nil
}

func (m StringMap) Clone() StringMap {
	if m == nil {
		return nil
	}
	out := make(StringMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneAny(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneAny(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneAny(item)
		}
		return out
	default:
		return v
	}
}

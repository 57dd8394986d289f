package models

// Profile is the display identity captured at login. It is not authenticated.
type Profile struct {
	Name      string `json:"name" msgpack:"name"`
	Email     string `json:"email" msgpack:"email"`
	AvatarURL string `json:"avatarUrl" msgpack:"avatarUrl"`
}

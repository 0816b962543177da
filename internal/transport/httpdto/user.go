package httpdto

import "memora/internal/domain/user"

// AuthorDTO is the public view of a user. Emails are never exposed.
type AuthorDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func FromAuthor(u *user.User) *AuthorDTO {
	if u == nil {
		return nil
	}
	return &AuthorDTO{ID: u.ID.String(), Name: u.Name, AvatarURL: u.AvatarURL}
}

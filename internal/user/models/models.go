package models

import (
	"time"

	id "credverify/pkg/domain"
)

// User is keyed by wallet subject and created lazily on first write.
// CredentialIDs has set semantics.
type User struct {
	Subject id.SubjectID `json:"walletAddress"`
	Profile
	CredentialIDs []string  `json:"credentials"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile holds the user-editable fields.
type Profile struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Bio        string `json:"bio"`
	AvatarURL  string `json:"avatarUrl"`
	IsEmployer bool   `json:"isEmployer"`
}

// ProfilePatch updates only the fields that are set.
type ProfilePatch struct {
	Name       *string
	Email      *string
	Bio        *string
	AvatarURL  *string
	IsEmployer *bool
}

// Apply returns p with the patch applied.
func (pp ProfilePatch) Apply(p Profile) Profile {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Email != nil {
		p.Email = *pp.Email
	}
	if pp.Bio != nil {
		p.Bio = *pp.Bio
	}
	if pp.AvatarURL != nil {
		p.AvatarURL = *pp.AvatarURL
	}
	if pp.IsEmployer != nil {
		p.IsEmployer = *pp.IsEmployer
	}
	return p
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.CredentialIDs = append([]string(nil), u.CredentialIDs...)
	return &cp
}

package model

// Profile actions accepted by POST /user.
const (
	ActionChangeInformation = "change_information"
	ActionChangePassword    = "change_password"
	ActionChangeEmail       = "change_email"
)

// ProfileResponse is the caller's own profile.
type ProfileResponse struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	RealName string  `json:"real_name"`
	Points   int     `json:"points"`
	Rank     *int    `json:"rank"`
	Team     *string `json:"team"`
	Captain  bool    `json:"is_captain"`
}

// ChangeInformationRequest updates display name and identity details.
type ChangeInformationRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	RealName string `json:"real_name" binding:"required,max=64"`
	IDCard   string `json:"id_card" binding:"required,idcard"`
}

// ChangePasswordRequest replaces the password after checking the old one.
type ChangePasswordRequest struct {
	OldPassword string `json:"password_old" binding:"required"`
	NewPassword string `json:"password_new" binding:"required,max=72"`
}

// ChangeEmailRequest replaces the email and requires re-verification.
type ChangeEmailRequest struct {
	Email string `json:"email" binding:"required,ctfemail,max=255"`
}

// ToProfile converts a user to its public profile.
func (u *User) ToProfile() *ProfileResponse {
	return &ProfileResponse{
		Name:     u.Name,
		Email:    u.Email,
		RealName: u.RealName,
		Points:   u.Points,
		Rank:     u.Rank,
		Team:     u.TeamName,
		Captain:  u.IsCaptain,
	}
}

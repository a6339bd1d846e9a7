package model

// Team actions accepted by POST /team.
const (
	ActionCreate   = "create_team"
	ActionJoin     = "join_team"
	ActionTransfer = "trans_team"
	ActionRename   = "change_team_name"
)

// Member is a roster entry.
type Member struct {
	Name      string `json:"name"`
	Points    int    `json:"points"`
	IsCaptain bool   `json:"is_captain"`
}

// TeamResponse describes the caller's team.
type TeamResponse struct {
	Name      string   `json:"name"`
	Num       int      `json:"num"`
	Points    int      `json:"points"`
	Rank      *int     `json:"rank"`
	IsCaptain bool     `json:"is_captain"`
	Members   []Member `json:"members"`
}

// CreateRequest founds a new team.
type CreateRequest struct {
	Name string `json:"create_name" binding:"required,max=64"`
	Code string `json:"create_code" binding:"required,max=64"`
}

// JoinRequest joins an existing team by name and invite code.
type JoinRequest struct {
	Name string `json:"join_name" binding:"required,max=64"`
	Code string `json:"code" binding:"required,max=64"`
}

// TransferRequest hands captaincy to another member.
type TransferRequest struct {
	CaptainName string `json:"captain_name" binding:"required,max=64"`
}

// RenameRequest renames the team.
type RenameRequest struct {
	Name string `json:"change_name" binding:"required,max=64"`
}

// LeaveResult reports what DELETE /team did.
type LeaveResult struct {
	Dissolved bool `json:"dissolved"`
}

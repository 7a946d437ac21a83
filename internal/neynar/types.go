package neynar

// Follow is one relationship edge as returned by the followers and
// following endpoints.
type Follow struct {
	FID       int64  `json:"fid"`
	UpdatedAt string `json:"updated_at"`
}

type User struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
}

type UserResult struct {
	User *User `json:"user"`
}

type UserResponse struct {
	Result *UserResult `json:"result"`
}

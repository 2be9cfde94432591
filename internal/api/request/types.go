package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SelectRoleRequest is the request body for taking a seat.
// An empty role leaves the current seat.
type SelectRoleRequest struct {
	Role string `json:"role"`
}

// TransferHostRequest is the request body for transferring host
type TransferHostRequest struct {
	NewHostID string `json:"new_host_id"`
}

// ClueRequest is the request body for giving a clue
type ClueRequest struct {
	Text   string `json:"text"`
	Number *int   `json:"number"`
}

// SelectRequest is the request body for selecting a word
type SelectRequest struct {
	Word string `json:"word"`
}

// AddBotRequest is the request body for seating a bot.
// An empty strategy uses the default.
type AddBotRequest struct {
	Role     string `json:"role"`
	Strategy string `json:"strategy,omitempty"`
}

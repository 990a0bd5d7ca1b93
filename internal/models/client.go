package models

// Client is an identity record for a natural person. Clients are owned
// independently of groups and are referenced (never owned) by memberships.
type Client struct {
	ID        int64  `json:"client_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	// Email is optional but unique across clients when set.
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	// CreatedAt is the unix timestamp when the client was registered.
	CreatedAt int64 `json:"created_at"`
}

// FullName joins the client's first and last name for display.
func (c *Client) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

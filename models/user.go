package models

// User is a chat-platform member known to the bot. The ID is the
// platform snowflake; IsAdmin marks users allowed to run admin-only
// commands. Users are upserted lazily the first time they run a command.
type User struct {
	ID      string `json:"id" gorm:"primaryKey"`
	IsAdmin bool   `json:"is_admin"`
}

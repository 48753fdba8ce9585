// Package domain holds the account model.
package domain

import "time"

// Account is a user record keyed by Telegram identity. telegram_id carries a
// unique constraint; provisioning on login is find-or-create against it.
type Account struct {
	ID               string
	TelegramID       int64
	TelegramUsername string
	Name             string
	AvatarURL        string
	Bio              string
	Work             string
	Study            string
	Pet              string
	Sports           []string
	Interests        []string
	Location         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileUpdate carries a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name      *string
	AvatarURL *string
	Bio       *string
	Work      *string
	Study     *string
	Pet       *string
	Sports    *[]string
	Interests *[]string
	Location  *string
}

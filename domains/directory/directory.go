package directory

import "context"

type Contact struct {
	JID   string `json:"jid"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

type Group struct {
	JID          string `json:"jid"`
	Name         string `json:"name"`
	Participants int    `json:"participants"`
}

type IDirectoryUsecase interface {
	GetContacts(ctx context.Context, accountID string) ([]Contact, error)
	GetGroups(ctx context.Context, accountID string) ([]Group, error)
}

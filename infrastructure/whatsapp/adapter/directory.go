package adapter

import (
	"context"
	"fmt"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainDirectory "github.com/AzielCF/az-blast/domains/directory"
	"github.com/AzielCF/az-blast/pkg/jidutils"
	"go.mau.fi/whatsmeow/types"
)

// GetContacts enumerates the synced address book. Entries without a
// resolvable phone number are skipped, short local numbers get the default
// country prefix and nameless contacts get a placeholder display name.
func (wa *WhatsAppAdapter) GetContacts(ctx context.Context) ([]domainDirectory.Contact, error) {
	cli := wa.getClient()
	if cli == nil {
		return nil, fmt.Errorf("no client")
	}

	contacts, err := cli.Store.Contacts.GetAllContacts(ctx)
	if err != nil {
		return nil, err
	}

	defaultCountry := coreconfig.Global.Whatsapp.DefaultCountryCode
	result := make([]domainDirectory.Contact, 0, len(contacts))
	for jid, contact := range contacts {
		if jid.Server != types.DefaultUserServer {
			continue
		}
		phone := jidutils.NormalizePhone(jid.User, defaultCountry)
		if phone == "" {
			continue
		}

		name := contact.FullName
		if name == "" {
			name = contact.PushName
		}
		if name == "" {
			name = "Contact " + phone
		}

		result = append(result, domainDirectory.Contact{
			JID:   jid.String(),
			Phone: phone,
			Name:  name,
		})
	}
	return result, nil
}

// GetGroups enumerates the groups this account participates in.
func (wa *WhatsAppAdapter) GetGroups(ctx context.Context) ([]domainDirectory.Group, error) {
	cli := wa.getClient()
	if cli == nil {
		return nil, fmt.Errorf("no client")
	}

	groups, err := cli.GetJoinedGroups(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domainDirectory.Group, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if name == "" {
			name = "Group " + g.JID.User
		}
		result = append(result, domainDirectory.Group{
			JID:          g.JID.String(),
			Name:         name,
			Participants: len(g.Participants),
		})
	}
	return result, nil
}

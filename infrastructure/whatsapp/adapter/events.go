package adapter

import (
	domainSession "github.com/AzielCF/az-blast/domains/session"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow/types/events"
)

// handleEvent converts whatsmeow events into session lifecycle events.
func (wa *WhatsAppAdapter) handleEvent(evt interface{}) {
	switch v := evt.(type) {
	case *events.QR:
		if len(v.Codes) > 0 {
			wa.emit(domainSession.Event{Type: domainSession.EventQR, Code: v.Codes[0]})
		}

	case *events.PairSuccess:
		logrus.Infof("[WHATSAPP] Paired %s with device %s", wa.accountID, v.ID.String())

	case *events.Connected:
		wa.emit(domainSession.Event{Type: domainSession.EventReady})

	case *events.Disconnected:
		wa.emit(domainSession.Event{Type: domainSession.EventDisconnected, Reason: "connection lost"})

	case *events.StreamReplaced:
		// Another client took over the stream; treat it as a disconnect and
		// let the registry decide whether to reconnect.
		wa.emit(domainSession.Event{Type: domainSession.EventDisconnected, Reason: "stream replaced"})

	case *events.LoggedOut:
		wa.emit(domainSession.Event{Type: domainSession.EventAuthFailure, Reason: "logged out from device"})

	case *events.ClientOutdated:
		wa.emit(domainSession.Event{Type: domainSession.EventAuthFailure, Reason: "client version rejected"})
	}
}

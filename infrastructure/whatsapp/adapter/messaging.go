package adapter

import (
	"context"
	"fmt"

	coreconfig "github.com/AzielCF/az-blast/core/config"
	domainSession "github.com/AzielCF/az-blast/domains/session"
	pkgUtils "github.com/AzielCF/az-blast/pkg/utils"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"
)

// SendText sends a plain text message to an already-resolved JID.
func (wa *WhatsAppAdapter) SendText(ctx context.Context, chatID, text string) (domainSession.SendResponse, error) {
	cli := wa.getClient()
	if cli == nil {
		return domainSession.SendResponse{}, fmt.Errorf("no client")
	}

	jid, err := wa.parseJID(chatID)
	if err != nil {
		return domainSession.SendResponse{}, fmt.Errorf("invalid JID: %w", err)
	}

	msg := &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
		},
	}

	resp, err := cli.SendMessage(ctx, jid, msg)
	if err != nil {
		return domainSession.SendResponse{}, err
	}

	return domainSession.SendResponse{
		MessageID: resp.ID,
		Timestamp: resp.Timestamp,
	}, nil
}

// SendImage downloads the image from the given URL, uploads it to the media
// servers and sends it with an optional caption.
func (wa *WhatsAppAdapter) SendImage(ctx context.Context, chatID, imageURL, caption string) (domainSession.SendResponse, error) {
	cli := wa.getClient()
	if cli == nil {
		return domainSession.SendResponse{}, fmt.Errorf("no client")
	}

	jid, err := wa.parseJID(chatID)
	if err != nil {
		return domainSession.SendResponse{}, fmt.Errorf("invalid JID: %w", err)
	}

	data, _, mimeType, err := pkgUtils.DownloadFileFromURL(ctx, imageURL, coreconfig.Global.Whatsapp.MaxDownloadSize)
	if err != nil {
		return domainSession.SendResponse{}, err
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	uploaded, err := cli.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return domainSession.SendResponse{}, fmt.Errorf("failed to upload media: %w", err)
	}

	msg := &waE2E.Message{
		ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(mimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			Caption:       proto.String(caption),
		},
	}

	resp, err := cli.SendMessage(ctx, jid, msg)
	if err != nil {
		return domainSession.SendResponse{}, err
	}

	return domainSession.SendResponse{
		MessageID: resp.ID,
		Timestamp: resp.Timestamp,
	}, nil
}

// SendDocument downloads the file from the given URL and sends it as a
// document attachment.
func (wa *WhatsAppAdapter) SendDocument(ctx context.Context, chatID, documentURL, fileName string) (domainSession.SendResponse, error) {
	cli := wa.getClient()
	if cli == nil {
		return domainSession.SendResponse{}, fmt.Errorf("no client")
	}

	jid, err := wa.parseJID(chatID)
	if err != nil {
		return domainSession.SendResponse{}, fmt.Errorf("invalid JID: %w", err)
	}

	data, urlName, mimeType, err := pkgUtils.DownloadFileFromURL(ctx, documentURL, coreconfig.Global.Whatsapp.MaxDownloadSize)
	if err != nil {
		return domainSession.SendResponse{}, err
	}
	if fileName == "" {
		fileName = urlName
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	uploaded, err := cli.Upload(ctx, data, whatsmeow.MediaDocument)
	if err != nil {
		return domainSession.SendResponse{}, fmt.Errorf("failed to upload media: %w", err)
	}

	msg := &waE2E.Message{
		DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(mimeType),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			FileName:      proto.String(fileName),
			Title:         proto.String(fileName),
		},
	}

	resp, err := cli.SendMessage(ctx, jid, msg)
	if err != nil {
		return domainSession.SendResponse{}, err
	}

	return domainSession.SendResponse{
		MessageID: resp.ID,
		Timestamp: resp.Timestamp,
	}, nil
}

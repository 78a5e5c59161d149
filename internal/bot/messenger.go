package bot

import "context"

// Messenger is the interactive transport the bot replies through. The VK
// client in internal/notify implements it.
type Messenger interface {
	// SendMessage delivers a new message, optionally with a serialized
	// inline keyboard.
	SendMessage(ctx context.Context, peerID int64, text string, keyboard []byte) error
	// EditMessage rewrites an existing conversation message in place,
	// optionally attaching media.
	EditMessage(ctx context.Context, peerID, messageID int64, text string, keyboard []byte, attachment string) error
	// UploadPhoto stores image bytes with the messenger and returns an
	// attachment reference usable in EditMessage.
	UploadPhoto(ctx context.Context, peerID int64, image []byte) (string, error)
	// AnswerCallback acknowledges a callback button press with a short
	// notice shown to the user.
	AnswerCallback(ctx context.Context, eventID string, userID, peerID int64, text string) error
}

package service

// QRCodeService generates share QR codes for catalog entries.
type QRCodeService interface {
	// BookSharePNG renders a PNG QR code pointing at the public page for the book.
	BookSharePNG(bookID int64) ([]byte, error)

	// BookShareTerminal renders the same QR code as a terminal-printable string.
	BookShareTerminal(bookID int64) (string, error)
}

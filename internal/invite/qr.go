// Package invite renders join links for challenges as QR codes.
package invite

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const qrSize = 256

type Invite struct {
	ChallengeID  int64  `json:"challengeId"`
	JoinURL      string `json:"joinUrl"`
	QrCodeBase64 string `json:"qrCodeBase64"`
}

// JoinURL builds the deep link for joining challengeID, e.g.
// challengetracker://challenge/join/3.
func JoinURL(baseURL string, challengeID int64) string {
	return fmt.Sprintf("%s/%d", strings.TrimRight(baseURL, "/"), challengeID)
}

func New(baseURL string, challengeID int64) (*Invite, error) {
	joinURL := JoinURL(baseURL, challengeID)

	pngBytes, err := qrcode.Encode(joinURL, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR png: %w", err)
	}

	return &Invite{
		ChallengeID:  challengeID,
		JoinURL:      joinURL,
		QrCodeBase64: base64.StdEncoding.EncodeToString(pngBytes),
	}, nil
}

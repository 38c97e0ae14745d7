// internal/smtpconn/message.go
package smtpconn

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/textproto"
	"time"

	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/attach"
	"github.com/vikramnairoffice/Simple-mailer-with-personlization/internal/model"
)

// BuildMIME renders a Message into raw RFC 5322 bytes: plain-text body,
// optional base64 attachment, multipart/mixed when both are present.
func BuildMIME(msg *model.Message) ([]byte, error) {
	var buf bytes.Buffer

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	if msg.Attachment == nil {
		buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
		buf.WriteString("\r\n")
		buf.WriteString(msg.Body)
		buf.WriteString("\r\n")
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=utf-8")
	tw, err := mw.CreatePart(textHeader)
	if err != nil {
		return nil, fmt.Errorf("build text part: %w", err)
	}
	if _, err := tw.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	attHeader := textproto.MIMEHeader{}
	attHeader.Set("Content-Type", attach.ContentType(msg.Attachment.Filename))
	attHeader.Set("Content-Transfer-Encoding", "base64")
	attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", msg.Attachment.Filename))
	aw, err := mw.CreatePart(attHeader)
	if err != nil {
		return nil, fmt.Errorf("build attachment part: %w", err)
	}
	enc := base64.NewEncoder(base64.StdEncoding, aw)
	if _, err := enc.Write(msg.Attachment.Data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package model

// Receipt is an uploaded acknowledgement scan, as the portal returns it.
type Receipt struct {
	Filename      string `json:"filename"`
	ContentType   string `json:"content_type"`
	Base64Content string `json:"base64_content"`
}

// DataURL is the form stored in ReceiveDetails.ReceiptFile.
func (r Receipt) DataURL() string {
	return "data:" + r.ContentType + ";base64," + r.Base64Content
}

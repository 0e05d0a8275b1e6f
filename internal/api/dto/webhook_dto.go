package dto

// TelerivetWebhookRequest is the inbound-message payload posted by the
// Telerivet gateway. Field names vary across gateway configurations, so
// the sender and content are accepted under several aliases.
type TelerivetWebhookRequest struct {
	Secret     string `json:"secret" form:"secret"`
	FromNumber string `json:"from_number" form:"from_number"`
	From       string `json:"from" form:"from"`
	Sender     string `json:"sender" form:"sender"`
	Content    string `json:"content" form:"content"`
	Message    string `json:"message" form:"message"`
	Text       string `json:"text" form:"text"`
	Body       string `json:"body" form:"body"`
}

// Phone returns the first non-empty sender alias.
func (r TelerivetWebhookRequest) Phone() string {
	for _, v := range []string{r.FromNumber, r.From, r.Sender} {
		if v != "" {
			return v
		}
	}
	return ""
}

// MessageText returns the first non-empty content alias.
func (r TelerivetWebhookRequest) MessageText() string {
	for _, v := range []string{r.Content, r.Message, r.Text, r.Body} {
		if v != "" {
			return v
		}
	}
	return ""
}

// GatewayWebhookRequest is the form-encoded payload posted by the
// generic SMS gateway channel.
type GatewayWebhookRequest struct {
	From string `json:"From" form:"From"`
	Body string `json:"Body" form:"Body"`
}

package email

// Message là một email đã render sẵn
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

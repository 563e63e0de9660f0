package domain

// Session is the identity issued by the backend after a successful
// sign-in or sign-up. The client holds at most one at a time.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

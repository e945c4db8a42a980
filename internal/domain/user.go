package domain

// User is the single device-local account. Passwords are kept as entered.
type User struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	DisplayName     string `json:"display_name"`
	DateOfBirth     string `json:"date_of_birth"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	IsLoggedIn      bool   `json:"isLoggedIn"`
}

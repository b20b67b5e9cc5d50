package user

type UserStorage interface {
	RegisterUser(username, email, password string) (*User, error)
	LoginUser(username, password string) (string, error) // JWT
	GetUserById(id string) (*User, error)
}

package user

type User struct {
	ID          int64  `json:"id" db:"id"`
	Username    string `json:"username" db:"username"`
	Password    string `json:"-" db:"password"`
	AvatarColor string `json:"avatarColor" db:"avatar_color"`
}

type CreateUserRequest struct {
	Username    string `json:"username" validate:"required,min=1,max=64"`
	Password    string `json:"password" validate:"required"`
	AvatarColor string `json:"avatarColor,omitempty" validate:"omitempty,hexcolor"`
}
